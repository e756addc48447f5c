package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
)

var callMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

func newCallCmd(rt *runtime) *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:   "call METHOD PATH",
		Short: "Make an authenticated API call",
		Long: `Make an API call with the stored credential, e.g.

  jz call GET /players/me
  jz call POST /games --data '{"categories": 6}'

PATH is relative to the API root. An expired guest session is renewed and the
call retried once.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			method := strings.ToUpper(args[0])
			if !callMethods[method] {
				return fmt.Errorf("unsupported method %q", args[0])
			}
			path := args[1]
			if !strings.HasPrefix(path, "/") {
				path = "/" + path
			}

			var body any
			if data != "" {
				if !json.Valid([]byte(data)) {
					return fmt.Errorf("--data is not valid JSON")
				}
				body = json.RawMessage(data)
			}

			ctx := cmd.Context()
			if err := rt.initialize(ctx, false); err != nil {
				return err
			}

			var result json.RawMessage
			if err := rt.app.API.Do(ctx, method, path, body, &result); err != nil {
				return err
			}

			if len(result) == 0 {
				rt.out.PrintMessage(fmt.Sprintf("%s %s: no content", method, path))
				return nil
			}
			rt.out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&data, "data", "d", "", "JSON request body")

	return cmd
}
