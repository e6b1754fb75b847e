// ABOUTME: CLI tool to list every audio endpoint in every state, with ids and default roles.
// ABOUTME: Used to find device names and ids for /input:, /output: and scripts.

package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/777genius/audiodevice/internal/endpoint"
	"github.com/777genius/audiodevice/internal/wasapi"
)

func main() {
	sys, err := wasapi.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening audio endpoints: %v\n", err)
		os.Exit(1)
	}
	defer sys.Close()

	m := endpoint.NewManager(sys, os.Stderr, endpoint.ConfirmRoles)
	if n := render(os.Stdout, m); n == 0 {
		fmt.Println("No audio endpoints found.")
	}
}

// render writes a table of all endpoints of both flows and returns the row count.
// The index column is the /input: or /output: index, shown for active endpoints only.
func render(w io.Writer, m *endpoint.Manager) int {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.SetRowSeparator("")
	table.SetCenterSeparator("-")
	table.SetColumnSeparator("|")
	table.SetHeader([]string{"Index", "Flow", "Name", "State", "Default", "ID"})

	rows := 0
	for _, flow := range []endpoint.Flow{endpoint.Render, endpoint.Capture} {
		active := 0
		for _, e := range m.List(flow, endpoint.StateAll) {
			index := ""
			if e.State == endpoint.StateActive {
				index = strconv.Itoa(active)
				active++
			}
			table.Append([]string{index, flow.String(), e.Name, e.State.String(), defaultRoles(e), e.ID})
			rows++
		}
	}

	if rows > 0 {
		table.Render()
	}
	return rows
}

func defaultRoles(e endpoint.Endpoint) string {
	var roles []string
	for _, r := range endpoint.Roles {
		if e.IsDefaultFor(r) {
			roles = append(roles, r.String())
		}
	}
	return strings.Join(roles, ",")
}
