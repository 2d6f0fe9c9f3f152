// Copyright (c) Microsoft Corporation 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import "github.com/Azure/armlint/cmd/armlint/command"

func main() {
	command.Execute()
}
