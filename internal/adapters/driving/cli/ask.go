package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/stig-assist/internal/core/domain"
)

func newAskCmd(app *App) *cobra.Command {
	var (
		controlID string
		rhel      string
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a compliance question",
		Long: `Answers a question using the indexed benchmarks.

RHEL 9 is preferred unless --rhel is given or the question targets a RHEL 8
control. A control id such as RHEL-08-010010 in the question is used as the
target when --stig-id is not set.`,
		Example: `  stig-assist ask "How do I enable FIPS mode?"
  stig-assist ask --rhel 8 "Which audit rules are required?"
  stig-assist ask "What does RHEL-09-211010 require?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.connect(cmd.Context())
			if err != nil {
				return err
			}

			question := strings.Join(args, " ")
			req := domain.QueryRequest{
				Question:       question,
				ControlID:      controlID,
				ReleaseVersion: domain.ParseReleaseVersion(rhel),
			}
			if req.ControlID == "" {
				req.ControlID = domain.DetectControlID(question)
			}

			answer := svc.Query.Answer(cmd.Context(), req)
			if asJSON {
				if err := printJSON(cmd, answer); err != nil {
					return err
				}
			} else {
				printAnswer(cmd, answer)
			}

			if answer.Failed() {
				return answer.Err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&controlID, "stig-id", "", "target a specific control id")
	cmd.Flags().StringVar(&rhel, "rhel", "", "RHEL version to focus on (8 or 9)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output the answer as JSON")

	return cmd
}
