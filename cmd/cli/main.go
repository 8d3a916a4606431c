package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"aulepi/internal/model"
)

func main() {
	// Define arguments
	filePathPtr := flag.String("file", "", "Path to the raw snapshot JSON file")
	atPtr := flag.String("at", "", "Classification instant in RFC3339 (defaults to now)")
	timezonePtr := flag.String("timezone", "Europe/Rome", "IANA timezone the classification runs in")
	rulesPathPtr := flag.String("rules", "", "Path to a JSON opening-hours table (defaults to the built-in one)")
	soonPtr := flag.Int("soon", 30, "Available-soon window in minutes")
	outFilePathPtr := flag.String("out", "", "Path to the file where the output will be written; if empty, it'll be written into the Standard Output")
	flag.Parse()

	// Validate arguments
	if *filePathPtr == "" {
		log.Fatal("an input file must be specified")
	} else if *soonPtr < 0 {
		log.Fatalf("the available-soon window cannot be negative: %v", *soonPtr)
	}

	loc, err := time.LoadLocation(*timezonePtr)
	if err != nil {
		log.Fatalf("unknown timezone %v: %v", *timezonePtr, err)
	}

	now := time.Now().In(loc)
	if *atPtr != "" {
		if now, err = time.ParseInLocation(time.RFC3339, *atPtr, loc); err != nil {
			log.Fatalf("cannot parse -at: %v", err)
		}
		now = now.In(loc)
	}

	rules := model.DefaultRules
	if *rulesPathPtr != "" {
		if rules, err = model.RulesFromJson(*rulesPathPtr); err != nil {
			log.Fatalf("cannot load opening-hours rules: %v", err)
		}
	}

	// Extract input
	raw, err := model.SnapshotFromJson(*filePathPtr)
	if err != nil {
		log.Fatalf("cannot parse input file: %v", err)
	}

	// Classify and rank
	assembler := model.NewAssembler(model.NewCalendar(rules), time.Duration(*soonPtr)*time.Minute)
	snapshot := assembler.Assemble(raw, now)

	// Marshal output into json
	snapshotJson, err := json.MarshalIndent(snapshot.Buildings, "", "  ")
	if err != nil {
		log.Fatalf("an error occurred while building output json: %v", err)
	}

	// Verify outfile is empty, if so then write the results to the Standard Output
	if *outFilePathPtr == "" {
		fmt.Println(string(snapshotJson))
	} else {
		if err := os.WriteFile(*outFilePathPtr, snapshotJson, 0666); err != nil {
			log.Fatalf("an error occurred while writing to the output file: %v", err)
		}
	}
}
