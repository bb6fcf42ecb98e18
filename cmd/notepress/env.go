package main

import (
	"io"
	"os"
)

// Session credential environment variables.
const (
	envSessionCookie = "NOTEPRESS_SESSION_COOKIE"
	envCSRFToken     = "NOTEPRESS_CSRF_TOKEN"
	envAccount       = "NOTEPRESS_ACCOUNT"
	envBlockToken    = "NOTEPRESS_BLOCK_TOKEN"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Stdout io.Writer
	Stderr io.Writer
	Getenv func(string) string
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Getenv: os.Getenv,
	}
}
