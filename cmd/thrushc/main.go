// Copyright 2022 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/thrushlang/thrushc-go/internal/driver"
)

var verbose bool

var command = &cobra.Command{
	Use:  "thrushc file.thrush [file2.thrush ...] [-o output_dir]",
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		output, _ := cmd.PersistentFlags().GetString("output-dir")
		opt, _ := cmd.PersistentFlags().GetString("opt")
		emit, _ := cmd.PersistentFlags().GetStringSlice("emit")
		target, _ := cmd.PersistentFlags().GetString("target")
		cpuName, _ := cmd.PersistentFlags().GetString("cpu")
		reloc, _ := cmd.PersistentFlags().GetString("reloc")
		codeModel, _ := cmd.PersistentFlags().GetString("code-model")
		linker, _ := cmd.PersistentFlags().GetString("linker")
		linkerArgs, _ := cmd.PersistentFlags().GetStringSlice("linker-args")
		runJIT, _ := cmd.PersistentFlags().GetBool("jit")
		profile, _ := cmd.PersistentFlags().GetString("profile")
		diagnosticsOut, _ := cmd.PersistentFlags().GetString("diagnostics-out")

		res := driver.CompileUnits(driver.Options{
			Files:          args,
			OutputDir:      output,
			Opt:            opt,
			Emit:           emit,
			Target:         target,
			CPU:            cpuName,
			Reloc:          reloc,
			CodeModel:      codeModel,
			Linker:         linker,
			LinkerArgs:     linkerArgs,
			JIT:            runJIT,
			Profile:        profile,
			DiagnosticsOut: diagnosticsOut,
			Verbose:        verbose,
		})

		if verbose {
			for _, d := range res.Diagnostics {
				fmt.Fprintf(os.Stderr, "%s: %s\n", d.Severity, d.Message)
			}
		}
		os.Exit(res.ExitCode)
	},
}

func init() {
	command.PersistentFlags().StringP("output-dir", "o", "", "output directory of generated artifacts")
	command.PersistentFlags().StringP("opt", "O", "none", "optimization level (none, size, low, mid, mcqueen)")
	command.PersistentFlags().StringSlice("emit", nil, "artifacts to emit (tokens, ast, llvm-ir, raw-llvm-ir, llvm-bc, object, asm)")
	command.PersistentFlags().String("target", "", "target triple (defaults to the host LLVM default triple)")
	command.PersistentFlags().String("cpu", "", "target CPU (defaults to a host-probed CPU via golang.org/x/sys/cpu)")
	command.PersistentFlags().String("reloc", "static", "relocation model (pic, pie, static, dynamicnopic)")
	command.PersistentFlags().String("code-model", "small", "code model (small, kernel, medium, large)")
	command.PersistentFlags().String("linker", "clang", "external linker binary")
	command.PersistentFlags().StringSlice("linker-args", nil, "extra arguments passed verbatim to the linker")
	command.PersistentFlags().Bool("jit", false, "JIT-execute the module instead of linking a binary")
	command.PersistentFlags().String("profile", "", "write a CPU profile of the JIT run to this path")
	command.PersistentFlags().String("diagnostics-out", "", "write all diagnostics as JSON to this path")
	command.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "if set, increase verbosity level")
}

func main() {
	if err := command.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
