// Package common contains the client configuration and the logger setup shared by the CLI.
package common
