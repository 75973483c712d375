// jog - interactive terminal jog client for a running armctl daemon
//
// Sends incremental joint offsets over the /ws/control socket and prints
// telemetry from /ws/telemetry. Keys:
//
//	q/a  base          w/s  shoulder      e/d  elbow
//	r/f  wrist roll    t/g  wrist pitch   y/h  tool
//	+/-  step size     x    quit
//
// Input is line-based: type a key (or a run of keys) and press Enter.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/gorilla/websocket"
)

type jogMessage struct {
	Joint int     `json:"joint"`
	Delta float64 `json:"delta"`
}

type telemetry struct {
	Commanded [6]float64 `json:"commanded"`
	Busy      bool       `json:"busy"`
	Playing   bool       `json:"playing"`
}

// keymap pairs: key -> (joint, direction).
var keymap = map[rune]struct {
	joint int
	dir   float64
}{
	'q': {0, +1}, 'a': {0, -1},
	'w': {1, +1}, 's': {1, -1},
	'e': {2, +1}, 'd': {2, -1},
	'r': {3, +1}, 'f': {3, -1},
	't': {4, +1}, 'g': {4, -1},
	'y': {5, +1}, 'h': {5, -1},
}

func main() {
	addr := flag.String("addr", "127.0.0.1:8090", "armctl daemon address")
	step := flag.Float64("step", 5.0, "initial jog step in degrees")
	flag.Parse()

	control, _, err := websocket.DefaultDialer.Dial("ws://"+*addr+"/ws/control", nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect control: %v\n", err)
		os.Exit(1)
	}
	defer control.Close()

	go printTelemetry(*addr)

	fmt.Printf("connected to %s, step %.1f deg (x + Enter to quit)\n", *addr, *step)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		for _, key := range scanner.Text() {
			switch key {
			case 'x':
				return
			case '+':
				*step *= 2
				fmt.Printf("step %.1f deg\n", *step)
			case '-':
				*step /= 2
				fmt.Printf("step %.1f deg\n", *step)
			default:
				binding, ok := keymap[key]
				if !ok {
					continue
				}
				msg := jogMessage{Joint: binding.joint, Delta: binding.dir * *step}
				if err := control.WriteJSON(msg); err != nil {
					fmt.Fprintf(os.Stderr, "send: %v\n", err)
					return
				}
			}
		}
	}
}

// printTelemetry streams commanded state to the terminal, one line per frame.
func printTelemetry(addr string) {
	conn, _, err := websocket.DefaultDialer.Dial("ws://"+addr+"/ws/telemetry", nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect telemetry: %v\n", err)
		return
	}
	defer conn.Close()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var t telemetry
		if err := json.Unmarshal(data, &t); err != nil {
			continue
		}
		state := "idle"
		if t.Playing {
			state = "playing"
		} else if t.Busy {
			state = "moving"
		}
		fmt.Printf("\r[%6.1f %6.1f %6.1f %6.1f %6.1f %6.1f] %-8s",
			t.Commanded[0], t.Commanded[1], t.Commanded[2],
			t.Commanded[3], t.Commanded[4], t.Commanded[5], state)
	}
}
