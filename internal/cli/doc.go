// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package cli implements the crmsync command line.
//
// Every command loads the merged configuration, wires adapters, storages and
// services into an [App] and runs one operation against them. Reports are
// printed to stdout; logs go to stderr.
package cli
