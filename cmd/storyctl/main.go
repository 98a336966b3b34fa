package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"storybook-ai/backend/internal/credentials"
	"storybook-ai/backend/internal/story"
)

const defaultBaseURL = "http://localhost:8000"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Story Tools Usage:")
	fmt.Fprintln(w, "  storyctl validate [-migrate] <file.json>   Check a story document offline")
	fmt.Fprintln(w, "  storyctl generate -name N -age A -interests I  Request a story from a running server")
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return 2
	}

	switch args[0] {
	case "validate":
		return runValidate(args[1:], stdout, stderr)
	case "generate":
		return runGenerate(args[1:], stdout, stderr)
	case "help", "-h", "-help", "--help":
		usage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", args[0])
		usage(stderr)
		return 2
	}
}

func runValidate(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	migrate := fs.Bool("migrate", false, "Upgrade a v1 document before validating")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "validate expects exactly one file")
		return 2
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(stderr, "Error reading file: %v\n", err)
		return 1
	}

	var doc any = data
	if *migrate {
		upgraded, err := story.MigrateV1(data)
		if err != nil {
			printFailure(stderr, err)
			return 1
		}
		doc = upgraded
	}

	s, err := story.ParseAndValidate(doc)
	if err != nil {
		printFailure(stderr, err)
		return 1
	}

	fmt.Fprintf(stdout, "OK: %q, %d characters, %d scenes\n", s.Main.Title, len(s.Characters), len(s.Scenes))
	if *migrate {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(s); err != nil {
			fmt.Fprintf(stderr, "Error encoding story: %v\n", err)
			return 1
		}
	}
	return 0
}

func printFailure(w io.Writer, err error) {
	verr, ok := story.AsValidationError(err)
	if !ok {
		fmt.Fprintf(w, "INVALID: %v\n", err)
		return
	}
	fmt.Fprintf(w, "INVALID (%s):\n", verr.Stage)
	for _, v := range verr.Violations {
		fmt.Fprintf(w, "  - [%s] %s\n", v.Rule, v.Message)
	}
}

func runGenerate(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	baseURL := fs.String("url", envOr("STORY_API_URL", defaultBaseURL), "Server base URL")
	name := fs.String("name", "", "Child's name")
	age := fs.Int("age", 0, "Child's age")
	interests := fs.String("interests", "", "What the child loves, e.g. dinosaurs")
	timeout := fs.Duration("timeout", 3*time.Minute, "Request timeout")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *name == "" || *age == 0 || *interests == "" {
		fmt.Fprintln(stderr, "generate requires -name, -age and -interests")
		return 2
	}

	body, err := json.Marshal(map[string]any{
		"child_name":      *name,
		"child_age":       *age,
		"child_interests": *interests,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error encoding request: %v\n", err)
		return 1
	}

	req, err := http.NewRequest(http.MethodPost, strings.TrimRight(*baseURL, "/")+"/api/story/generate", bytes.NewReader(body))
	if err != nil {
		fmt.Fprintf(stderr, "Error creating request: %v\n", err)
		return 1
	}
	req.Header.Set("Content-Type", "application/json")
	setCredentialHeaders(req.Header)

	client := &http.Client{Timeout: *timeout}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Fprintf(stderr, "Error sending request: %v\n", err)
		return 1
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		fmt.Fprintf(stderr, "Error reading response: %v\n", err)
		return 1
	}
	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(stderr, "Server returned %d: %s\n", resp.StatusCode, respBody)
		return 1
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, respBody, "", "  "); err != nil {
		stdout.Write(respBody)
		return 0
	}
	pretty.WriteByte('\n')
	pretty.WriteTo(stdout)
	return 0
}

// setCredentialHeaders copies credentials from the environment, using the
// same variable names the server reads its defaults from
func setCredentialHeaders(h http.Header) {
	values := map[string]string{
		credentials.HeaderAccessCode:     os.Getenv("STORY_ACCESS_CODE"),
		credentials.HeaderOpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		credentials.HeaderElevenLabsKey:  os.Getenv("ELEVENLABS_API_KEY"),
		credentials.HeaderReplicateToken: os.Getenv("REPLICATE_API_TOKEN"),
	}
	for header, value := range values {
		if value != "" {
			h.Set(header, value)
		}
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
