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

// Command causalseq-cli is a thin admin client for a running causalseqd:
// it talks to the read API and the IPC wakeup socket, never to the
// journal file directly.
package main

import (
	"github.com/spf13/cobra"

	"github.com/x123la/lacrimosa/pkg/version"
)

var rootCmd = &cobra.Command{
	Use:   "causalseq-cli",
	Short: "Administrative client for the causal event sequencer",
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().String("addr", "http://127.0.0.1:8080", "read API base address")
	rootCmd.PersistentFlags().String("ipc-socket", "/tmp/causalseq.sock", "IPC wakeup socket path")

	rootCmd.AddCommand(version.VersionCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(tailCmd)
	rootCmd.AddCommand(sendCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		panic(err)
	}
}
