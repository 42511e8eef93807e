// Copyright (c) 2022 Shivaram Lingamneni <slingamn@cs.stanford.edu>
// released under the MIT license

package main

import (
	"bufio"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/docopt/docopt-go"
	"github.com/ergochat/phpbb-pwhash"
	"gopkg.in/yaml.v2"
)

// set via linker flags, either by make or by goreleaser:
var commit = ""  // git hash
var version = "" // tagged version

// get a password from stdin from the user
func getPasswordFromTerminal() string {
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		log.Fatal("Error reading password:", err.Error())
	}
	return string(bytePassword)
}

type corpusEntry struct {
	Hash     string `yaml:"hash"`
	Password string `yaml:"password"`
	// expected verification outcome; nil means a match is expected
	Expect *bool `yaml:"expect"`
}

// implements the `phpbb-pwhash batch` command: verify a whole corpus of
// hash/password pairs, e.g. before cutting over a board migration
func doBatch(corpusFile string, quiet bool) {
	data, err := ioutil.ReadFile(corpusFile)
	if err != nil {
		log.Fatal(err)
	}
	var entries []corpusEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		log.Fatal("Corpus file did not load successfully: ", err.Error())
	}

	failures := 0
	for i, entry := range entries {
		expect := true
		if entry.Expect != nil {
			expect = *entry.Expect
		}
		match, err := pwhash.CheckHash(entry.Hash, []byte(entry.Password))
		if err != nil {
			log.Printf("entry %d: invalid stored hash: %s\n", i, err.Error())
			failures++
			continue
		}
		if match != expect {
			log.Printf("entry %d: match=%v, expected %v\n", i, match, expect)
			failures++
		} else if !quiet {
			log.Printf("entry %d: ok\n", i)
		}
	}

	if failures != 0 {
		log.Fatalf("%d of %d corpus entries failed", failures, len(entries))
	}
	if !quiet {
		log.Printf("all %d corpus entries verified\n", len(entries))
	}
}

func main() {
	pwhash.SetVersionString(version, commit)
	usage := `phpbb-pwhash.
Usage:
	phpbb-pwhash check <hash>
	phpbb-pwhash batch <corpus.yaml> [--quiet]
	phpbb-pwhash -h | --help
	phpbb-pwhash --version
Options:
	--quiet     Only report corpus entries that fail.
	-h --help   Show this screen.
	--version   Show version.`

	arguments, _ := docopt.ParseArgs(usage, nil, pwhash.Ver)

	if arguments["check"].(bool) {
		var password string
		if term.IsTerminal(int(syscall.Stdin)) {
			fmt.Print("Enter Password: ")
			password = getPasswordFromTerminal()
			fmt.Print("\n")
		} else {
			reader := bufio.NewReader(os.Stdin)
			text, _ := reader.ReadString('\n')
			password = strings.TrimSpace(text)
		}
		match, err := pwhash.CheckHash(arguments["<hash>"].(string), []byte(password))
		if err != nil {
			log.Fatal("Invalid stored hash: ", err.Error())
		}
		if match {
			fmt.Println("match")
		} else {
			fmt.Println("no match")
			os.Exit(1)
		}
	} else if arguments["batch"].(bool) {
		doBatch(arguments["<corpus.yaml>"].(string), arguments["--quiet"].(bool))
	}
}
