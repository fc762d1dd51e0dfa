// Copyright © 2025 rrwm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// Package spawner names the shell-command-spawning boundary (spec.md §1
// "out of scope: shell-command spawning for user actions") as a narrow
// interface, grounded on the teacher's fork+exec idiom (cmd/texelation/
// lifecycle/daemon.go's exec.Command(exe, args...)) but fire-and-forget:
// spec.md §5 states spawned processes are never waited on.
package spawner

import (
	"errors"
	"os/exec"

	homedir "github.com/mitchellh/go-homedir"
)

// Spawner starts a user-requested process without waiting for it.
type Spawner interface {
	SpawnArgv(argv []string) error
	SpawnShell(command string) error
}

// Exec is the default Spawner, backed by os/exec.
type Exec struct{}

// New returns the default Spawner.
func New() *Exec {
	return &Exec{}
}

// SpawnArgv runs argv[0] with the remaining entries as arguments
// (spec.md §4.8 "spawn with a literal argv"). A leading "~/" in argv[0]
// is expanded against $HOME.
func (e *Exec) SpawnArgv(argv []string) error {
	if len(argv) == 0 {
		return errors.New("spawner: empty argv")
	}
	bin, err := homedir.Expand(argv[0])
	if err != nil {
		bin = argv[0]
	}
	cmd := exec.Command(bin, argv[1:]...)
	return cmd.Start()
}

// SpawnShell runs command through "sh -c" (spec.md §4.8 "shell with a
// single string passed to sh -c").
func (e *Exec) SpawnShell(command string) error {
	cmd := exec.Command("sh", "-c", command)
	return cmd.Start()
}
