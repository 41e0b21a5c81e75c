// Copyright 2026 The Quarry Authors
// SPDX-License-Identifier: Apache-2.0

// quarry-verify checks installed package files against the digests
// recorded in a package manifest.
//
// Every record under the configured manifest keys (by default "files"
// and "conf_files") is verified: the file's SHA256 digest is computed
// under the configured root directory and compared against the
// manifest. Positional arguments restrict verification to the named
// package-relative paths.
//
// Exit status: 0 when every verified file matched, 1 when any file
// mismatched or was missing, 2 on errors (unreadable manifest, bad
// flags, internal failures).
package main

import (
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/spf13/pflag"

	"github.com/quarry-foundation/quarry/lib/config"
	"github.com/quarry-foundation/quarry/lib/manifest"
	"github.com/quarry-foundation/quarry/lib/verify"
	"github.com/quarry-foundation/quarry/lib/version"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Handle --version before flag parsing to match other Quarry
	// binaries.
	for _, argument := range os.Args[1:] {
		if argument == "--version" {
			fmt.Printf("quarry-verify %s\n", version.Info())
			return 0
		}
	}

	flagSet := pflag.NewFlagSet("quarry-verify", pflag.ContinueOnError)
	configPath := flagSet.String("config", "", "path to quarry config file (default: QUARRY_CONFIG)")
	manifestPath := flagSet.String("manifest", "", "manifest to verify against")
	rootDir := flagSet.String("root", "", "alternate root directory for installed files")
	keys := flagSet.StringSlice("key", nil, "manifest keys to verify (default: files,conf_files)")
	logLevel := flagSet.String("log-level", "", "log level: debug, info, warn, error")
	flagSet.BoolP("help", "h", false, "show help")
	flagSet.Usage = func() { printUsage(flagSet) }

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printUsage(flagSet)
			return 0
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
	if help, _ := flagSet.GetBool("help"); help {
		printUsage(flagSet)
		return 0
	}

	configuration, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
	if *manifestPath != "" {
		configuration.Manifest = *manifestPath
	}
	if *rootDir != "" {
		configuration.RootDir = *rootDir
	}
	if len(*keys) > 0 {
		configuration.Keys = *keys
	}
	if *logLevel != "" {
		configuration.LogLevel = *logLevel
	}
	if configuration.Manifest == "" {
		fmt.Fprintf(os.Stderr, "error: no manifest given (use --manifest or the config file)\n")
		printUsage(flagSet)
		return 2
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(configuration.LogLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid log level %q\n", configuration.LogLevel)
		return 2
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	return verifyManifest(logger, configuration, flagSet.Args())
}

// verifyManifest checks every selected record and reports the exit
// status. only, when non-empty, restricts verification to the named
// package-relative paths.
func verifyManifest(logger *slog.Logger, configuration *config.Config, only []string) int {
	loaded, err := manifest.ReadFile(configuration.Manifest)
	if err != nil {
		logger.Error("cannot load manifest", "error", err)
		return 2
	}

	packageName, _ := loaded.Field("pkgname")
	logger.Info("verifying manifest",
		"manifest", loaded.Ref(),
		"pkgname", packageName,
		"rootdir", configuration.RootDir)

	verifier := &verify.Verifier{
		RootDir: configuration.RootDir,
		Logger:  logger,
	}

	var checked, mismatched, failed int
	for _, key := range configuration.Keys {
		records, ok := loaded.Records(key)
		if !ok {
			logger.Debug("manifest has no records under key", "key", key)
			continue
		}

		for _, record := range records {
			filename, ok := record.Field(verify.FileField)
			if !ok {
				logger.Error("manifest record without file field", "key", key)
				failed++
				continue
			}
			if len(only) > 0 && !slices.Contains(only, filename) {
				continue
			}

			checked++
			switch verifier.Verify(loaded, key, filename) {
			case verify.OutcomeMatched:
				logger.Debug("file ok", "key", key, "file", filename)
			case verify.OutcomeNotMatched:
				logger.Warn("file does not match manifest", "key", key, "file", filename)
				mismatched++
			case verify.OutcomeError:
				logger.Error("verification failed", "key", key, "file", filename)
				failed++
			}
		}
	}

	logger.Info("verification complete",
		"checked", checked,
		"mismatched", mismatched,
		"failed", failed)

	switch {
	case failed > 0:
		return 2
	case mismatched > 0:
		return 1
	default:
		return 0
	}
}

func printUsage(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `Usage: quarry-verify [flags] [file ...]

Verify installed package files against their manifest digests. With no
positional arguments every record under the configured keys is checked;
otherwise only the named package-relative paths are.

Flags:
%s`, flagSet.FlagUsages())
}
