package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	hrportal "github.com/MrEthical07/hrportal"
	"github.com/spf13/cobra"
)

var (
	queryParams []string
	rawOutput   bool
)

var getCmd = &cobra.Command{
	Use:   "get <path>",
	Short: "GET a backend path and print the unwrapped payload",
	Example: `  hrctl get employees
  hrctl get leaves/pending
  hrctl get reports/attendance -q startDate=2025-01-01 -q endDate=2025-01-31`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := fromContext(cmd.Context())

		query, err := parseQuery(queryParams)
		if err != nil {
			return err
		}

		resp, err := a.portal.Request(cmd.Context(), http.MethodGet, args[0], nil, &hrportal.RequestOptions{Query: query})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if rawOutput {
			_, err = out.Write(resp.Raw)
			return err
		}
		if len(resp.Data) == 0 {
			return nil
		}
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, resp.Data, "", "  "); err != nil {
			_, err = out.Write(resp.Data)
			return err
		}
		pretty.WriteByte('\n')
		_, err = out.Write(pretty.Bytes())
		return err
	},
}

func parseQuery(pairs []string) (url.Values, error) {
	q := url.Values{}
	for _, kv := range pairs {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid query parameter %q (want key=value)", kv)
		}
		q.Add(k, v)
	}
	return q, nil
}

func init() {
	getCmd.Flags().StringArrayVarP(&queryParams, "query", "q", nil, "query parameter key=value (repeatable)")
	getCmd.Flags().BoolVar(&rawOutput, "raw", false, "print the body exactly as received")
}
