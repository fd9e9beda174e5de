// Copyright 2025 Arcentra Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"encoding/binary"
	"fmt"
	"net"

	"github.com/spf13/cobra"
)

var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Connect to the IPC wakeup socket and print committed slot indices",
	RunE: func(cmd *cobra.Command, args []string) error {
		socketPath, err := cmd.Flags().GetString("ipc-socket")
		if err != nil {
			return err
		}

		conn, err := net.Dial("unix", socketPath)
		if err != nil {
			return fmt.Errorf("connect to ipc socket %s: %w", socketPath, err)
		}
		defer conn.Close()

		var msg [4]byte
		for {
			if _, err := conn.Read(msg[:]); err != nil {
				return fmt.Errorf("read ipc socket: %w", err)
			}
			slot := binary.LittleEndian.Uint32(msg[:])
			fmt.Printf("committed slot %d\n", slot)
		}
	},
}
