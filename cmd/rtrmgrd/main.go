// Copyright (c) 2018-2021, AT&T Intellectual Property. All rights reserved.
//
// SPDX-License-Identifier: LGPL-2.1-only

// rtrmgrd loads a schema and a running configuration, then validates or
// commits it against the commit engine — the minimal end-to-end driver for
// the new core (schema/config parsing, module lifecycle, action dispatch).
// It supersedes the teacher's cmd/configd, whose RPC/session wire protocol
// and multi-user locking are out of scope here (see DESIGN.md).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/danos/rtrmgr/action"
	"github.com/danos/rtrmgr/apply"
	"github.com/danos/rtrmgr/commit"
	"github.com/danos/rtrmgr/common"
	"github.com/danos/rtrmgr/config"
	"github.com/danos/rtrmgr/depgraph"
	"github.com/danos/rtrmgr/parse"
	"github.com/danos/rtrmgr/template"
)

func main() {
	schemaPath := flag.String("schema", "", "path to the schema (template) file")
	configPath := flag.String("config", "", "path to the configuration-text file to load")
	debugSettings := flag.String("debug-settings", "", "path to a debug-settings ini file")
	commitFlag := flag.Bool("commit", false, "run a commit instead of a dry-run validate")
	flag.Parse()

	if *schemaPath == "" || *configPath == "" {
		fmt.Fprintln(os.Stderr, "usage: rtrmgrd -schema FILE -config FILE [-commit]")
		os.Exit(2)
	}

	if *debugSettings != "" {
		if err := common.LoadDebugSettingsFile(*debugSettings); err != nil {
			log.Fatalf("loading debug settings: %v", err)
		}
	}

	schema, err := loadSchema(*schemaPath)
	if err != nil {
		log.Fatalf("loading schema: %v", err)
	}

	root, err := loadConfig(*configPath, schema)
	if err != nil {
		log.Fatalf("loading configuration: %v", err)
	}
	tree := &config.Tree{Root: root, Schema: schema}

	modules := depgraph.NewVCIModuleManager(nil)
	dispatcher := action.NewExecDispatcher()
	engine := commit.NewEngine(schema, modules, dispatcher)
	facade := apply.NewFacade(engine)

	ctx := context.Background()
	if *commitFlag {
		result, err := facade.Commit(ctx, tree, uint32(os.Getuid()))
		if err != nil {
			log.Fatalf("commit: %v", err)
		}
		printResult(result)
		return
	}

	result := facade.Validate(ctx, tree)
	printResult(result)
	if !result.Success {
		os.Exit(1)
	}
}

func loadSchema(path string) (*template.Tree, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parse.Schema(string(src), path)
}

func loadConfig(path string, schema *template.Tree) (*config.Node, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parse.Config(string(src), path, schema, 0, uint32(os.Getuid()), time.Now())
}

func printResult(result *commit.Result) {
	for _, out := range result.Outputs {
		fmt.Printf("%v: %s\n", out.Path, out.Output)
	}
	for _, execErr := range result.Errors {
		fmt.Fprintln(os.Stderr, common.FormatCommitOrValErrors(execErr.Err))
	}
}
