package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/npillmayer/ocp/ocpcode"
	"github.com/npillmayer/ocp/ocpstore"
	"github.com/thatisuday/commando"
)

func runStoreCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	lib, err := ocpstore.Open(flagString(flags["db"], "db"))
	if err != nil {
		fatalf("%v", err)
	}
	defer lib.Close()
	names := variadic(args["names"])
	switch action := strings.ToLower(strings.TrimSpace(args["action"].Value)); action {
	case "put":
		desc := flagString(flags["description"], "description")
		for _, path := range names {
			path = strings.TrimSpace(path)
			info := ocpstore.Info{Description: desc}
			if filepath.Ext(path) == ".otp" {
				src, err := os.ReadFile(path)
				if err != nil {
					fatalf("%v", err)
				}
				info.Source = string(src)
			}
			if err := lib.Put(loadProgram(path), info); err != nil {
				fatalf("%v", err)
			}
		}
	case "get":
		dir := flagString(flags["output"], "output")
		for _, name := range names {
			p, err := lib.Get(strings.TrimSpace(name))
			if err != nil {
				fatalf("%v", err)
			}
			path := filepath.Join(dir, p.Name()+".ocp")
			if err := os.WriteFile(path, ocpcode.Encode(p), 0o644); err != nil {
				fatalf("%v", err)
			}
		}
	case "delete":
		for _, name := range names {
			if err := lib.Delete(strings.TrimSpace(name)); err != nil {
				fatalf("%v", err)
			}
		}
	case "list", "":
		all, err := lib.Names()
		if err != nil {
			fatalf("%v", err)
		}
		for _, name := range all {
			fmt.Println(name)
		}
	case "info":
		for _, name := range names {
			info, err := lib.Info(strings.TrimSpace(name))
			if err != nil {
				fatalf("%v", err)
			}
			fmt.Printf("%s: input=%d output=%d states=%d tables=%d words=%d\n",
				info.Name, info.Input, info.Output, info.States, info.Tables, info.Words)
			if info.Description != "" {
				fmt.Printf("  %s\n", info.Description)
			}
		}
	default:
		fatalf("unknown store action %q", action)
	}
}
