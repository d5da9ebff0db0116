// Copyright 2025 Casavia Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/casavia/rentmatch"
	"github.com/casavia/rentmatch/core"
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
}

func main() {
	ctx := context.Background()
	engine, err := rentmatch.NewEngine(ctx, "./listings_db")
	if err != nil {
		panic(err)
	}
	defer engine.Close()

	desc := "bright two bedroom apartment overlooking a canal"
	if len(os.Args) > 1 {
		desc = strings.Join(os.Args[1:], " ")
	}

	results, err := engine.Match(ctx, &core.Listing{
		Description: desc,
		Rooms:       core.RoomsUnknown,
	}, 5)
	if err != nil {
		panic(err)
	}

	fmt.Printf("Found %d matches\n", len(results))
	for i, hit := range results {
		fmt.Printf("%d: '%s' (%s)[%0.3f]\n", i, hit.Title, hit.URL, hit.FinalScore)
	}
}
