//go:build mage
// +build mage

// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/magefile/mage/mg"
)

type Finetune mg.Namespace

// Build compiles the CLI into ./bin. VERSION overrides the stamped version.
func (Finetune) Build(ctx context.Context) error {
	ldflags := ""
	if version := os.Getenv("VERSION"); version != "" {
		ldflags = fmt.Sprintf("-X finetune.quickstart/internal/version.Version=%s", version)
	}

	cmdStr, cmd := runIn(
		".",
		"go",
		"build",
		"-ldflags", ldflags,
		"-o",
		"./bin/finetune",
		".",
	)
	fmt.Println(cmdStr)
	return cmd()
}

func (Finetune) Test(ctx context.Context) error {
	cmdStr, cmd := runIn(
		".",
		"go",
		"test",
		"./...",
	)
	fmt.Println(cmdStr)
	return cmd()
}

func runIn(cwd string, cmd string, args ...string) (string, func() error) {
	c := exec.Command(cmd, args...)
	c.Dir = cwd
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	return c.String(), func() error {
		return c.Run()
	}
}
