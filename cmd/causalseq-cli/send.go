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
	"fmt"
	"hash/crc32"
	"net"

	"github.com/spf13/cobra"

	"github.com/x123la/lacrimosa/internal/atom"
)

var (
	sendTarget   string
	sendNodeID   uint32
	sendStreamID uint16
	sendPayload  string
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send a single test event atom over UDP",
	RunE: func(cmd *cobra.Command, args []string) error {
		payload := []byte(sendPayload)
		checksum := crc32.Checksum(payload, crc32.MakeTable(crc32.Castagnoli))
		header := atom.New(0, sendNodeID, sendStreamID, 0, checksum)

		buf := make([]byte, atom.Size+len(payload))
		atom.Encode(header, buf[:atom.Size])
		copy(buf[atom.Size:], payload)

		conn, err := net.Dial("udp", sendTarget)
		if err != nil {
			return fmt.Errorf("dial %s: %w", sendTarget, err)
		}
		defer conn.Close()

		if _, err := conn.Write(buf); err != nil {
			return fmt.Errorf("send packet: %w", err)
		}
		fmt.Printf("sent %d bytes (node=%d stream=%d)\n", len(buf), sendNodeID, sendStreamID)
		return nil
	},
}

func init() {
	sendCmd.Flags().StringVar(&sendTarget, "target", "127.0.0.1:9000", "sequencer UDP bind address")
	sendCmd.Flags().Uint32Var(&sendNodeID, "node", 1, "node_id to stamp the event with")
	sendCmd.Flags().Uint16Var(&sendStreamID, "stream", 0, "stream_id to stamp the event with")
	sendCmd.Flags().StringVar(&sendPayload, "payload", "hello", "payload bytes to send")
}
