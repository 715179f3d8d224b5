// Command test-reality runs the client against a live controller and reports
// each step of the session lifecycle.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/lexfrei/go-fortimanager/api/fortimanager"
	"github.com/lexfrei/go-fortimanager/config"
)

var (
	configFile = flag.String("config", "", "YAML config file (FORTIMANAGER_* environment variables override it)")
	verbose    = flag.Bool("verbose", false, "Verbose output with full JSON results")
)

type TestResult struct {
	Step       string
	Success    bool
	Error      string
	Code       int
	Session    fortimanager.SessionState
	JSONSample string
	Duration   time.Duration
}

func main() {
	flag.Parse()

	cfg, err := config.Load(config.WithConfigFile(*configFile))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	fmt.Println("🧪 Testing go-fortimanager against reality...")
	fmt.Println("=" + strings.Repeat("=", 60))
	fmt.Println()

	client, err := fortimanager.NewWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}
	defer client.Close()

	ctx := context.Background()
	adom := client.Config().ADOM
	_, stateful := cfg.Credential.(fortimanager.SessionCredential)

	fmt.Printf("📡 Controller: %s (ADOM %s, session auth: %v)\n\n", client.Config().Host, adom, stateful)

	results := []TestResult{
		dispatchStep(ctx, client, "first call (login)", fortimanager.URLStatus),
		dispatchStep(ctx, client, "second call (session probe)", fortimanager.URLStatus),
		dispatchStep(ctx, client, "list ADOMs", "/dvmdb/adom"),
		dispatchStep(ctx, client, "list devices", "/dvmdb/adom/"+adom+"/device"),
		logoutStep(ctx, client),
		dispatchStep(ctx, client, "call after logout (re-login)", fortimanager.URLStatus),
	}

	fmt.Println("📊 Test Summary")
	fmt.Println("=" + strings.Repeat("=", 60))
	fmt.Println()

	failures := 0
	for _, result := range results {
		status := "✅"
		switch {
		case !result.Success:
			status = "❌"
			failures++
		case result.Code != 0:
			status = "⚠️"
		}

		fmt.Printf("%s %s (code %d, session %s, %v)\n", status, result.Step, result.Code, result.Session, result.Duration.Round(time.Millisecond))

		if result.Error != "" {
			fmt.Printf("   Error: %s\n", result.Error)
		}

		if *verbose && result.JSONSample != "" {
			fmt.Printf("   JSON Sample:\n%s\n", indentJSON(result.JSONSample, "      "))
		}
	}

	fmt.Println()
	fmt.Println("=" + strings.Repeat("=", 60))
	if failures == 0 {
		fmt.Println("✅ All steps passed!")
		return
	}

	fmt.Printf("❌ %d step(s) failed\n", failures)
	os.Exit(1)
}

func dispatchStep(ctx context.Context, client *fortimanager.Client, step, url string) TestResult {
	start := time.Now()
	result := TestResult{Step: step + " " + url}

	res, err := client.Dispatch(ctx, fortimanager.MethodGet, fortimanager.Params{"url": url})
	result.Duration = time.Since(start)
	result.Session = client.Session().State

	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.Success = true
	result.Code = res.Status.Code
	if res.Status.Code != 0 {
		result.Error = res.Status.Message
	}
	if *verbose {
		result.JSONSample = string(res.Raw)
	}

	return result
}

func logoutStep(ctx context.Context, client *fortimanager.Client) TestResult {
	start := time.Now()
	result := TestResult{Step: "logout"}

	err := client.Logout(ctx)
	result.Duration = time.Since(start)
	result.Session = client.Session().State

	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.Success = result.Session == fortimanager.StateUnauthenticated
	if !result.Success {
		result.Error = "session still " + result.Session.String()
	}

	return result
}

func indentJSON(jsonStr, indent string) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(jsonStr), "", "  "); err == nil {
		jsonStr = buf.String()
	}

	lines := strings.Split(jsonStr, "\n")
	for i, line := range lines {
		lines[i] = indent + line
	}

	return strings.Join(lines, "\n")
}
