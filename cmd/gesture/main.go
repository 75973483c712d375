// gesture - play a named keyframe sequence through a running armctl daemon
//
// Usage:
//
//	gesture [-addr host:port] [-wait] <name>
//	gesture [-addr host:port] -list
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/openmanip/go-armctl/internal/httpc"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:8090", "armctl daemon address")
	list := flag.Bool("list", false, "list available sequences and exit")
	wait := flag.Bool("wait", false, "block until the sequence finishes")
	flag.Parse()

	base := "http://" + *addr

	if *list {
		names, err := fetchActions(base)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(strings.Join(names, "\n"))
		return
	}

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	name := flag.Arg(0)

	resp, err := httpc.Post(base+"/api/action/"+name, "application/json", nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var body struct {
			Error     string   `json:"error"`
			Available []string `json:"available"`
		}
		json.NewDecoder(resp.Body).Decode(&body)
		fmt.Fprintf(os.Stderr, "error: %s\n", body.Error)
		if len(body.Available) > 0 {
			fmt.Fprintf(os.Stderr, "available: %s\n", strings.Join(body.Available, ", "))
		}
		os.Exit(1)
	}

	fmt.Printf("playing %q\n", name)
	if *wait {
		waitForIdle(base)
		fmt.Println("done")
	}
}

func fetchActions(base string) ([]string, error) {
	resp, err := httpc.Get(base + "/api/actions")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var names []string
	if err := json.NewDecoder(resp.Body).Decode(&names); err != nil {
		return nil, err
	}
	return names, nil
}

// waitForIdle polls the state endpoint until playback stops.
func waitForIdle(base string) {
	for {
		time.Sleep(250 * time.Millisecond)

		resp, err := httpc.Get(base + "/api/state")
		if err != nil {
			continue
		}
		var state struct {
			Playing bool `json:"playing"`
			Busy    bool `json:"busy"`
		}
		err = json.NewDecoder(resp.Body).Decode(&state)
		resp.Body.Close()
		if err != nil {
			continue
		}
		if !state.Playing && !state.Busy {
			return
		}
	}
}
