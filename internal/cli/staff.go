package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/amirasaad/brokerage/pkg/dto"
	staffsvc "github.com/amirasaad/brokerage/pkg/service/staff"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	staffLogin      string
	staffContract   string
	staffRights     int64
	staffEmployment int64
)

var staffCmd = &cobra.Command{
	Use:   "staff",
	Short: "Manage staff accounts",
}

var staffCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a staff member",
	Long: `Create a staff member. The password is prompted for on a terminal
and read from the first line of standard input otherwise.

Example:
  brokerage staff create --login root --contract ADM-1 --rights 1`,
	RunE: runStaffCreate,
}

func init() {
	staffCreateCmd.Flags().StringVar(&staffLogin, "login", "", "login of the new staff member")
	staffCreateCmd.Flags().StringVar(&staffContract, "contract", "", "employment contract number")
	staffCreateCmd.Flags().Int64Var(&staffRights, "rights", 0, "rights level id (default: broker)")
	staffCreateCmd.Flags().Int64Var(&staffEmployment, "employment", 1, "employment status id")
	_ = staffCreateCmd.MarkFlagRequired("login")
	_ = staffCreateCmd.MarkFlagRequired("contract")
	staffCmd.AddCommand(staffCreateCmd)
}

func runStaffCreate(cmd *cobra.Command, args []string) error {
	password, err := readPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if staffRights == 0 {
		staffRights = cfg.Roles.Broker
	}

	uow, closeFn, err := openUoW()
	if err != nil {
		return err
	}
	defer closeFn()

	st, err := staffsvc.New(uow, cfg.Roles, logger).Create(cmd.Context(), dto.StaffCreate{
		Login:              staffLogin,
		Password:           password,
		ContractNumber:     staffContract,
		RightsLevelID:      staffRights,
		EmploymentStatusID: staffEmployment,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	success(out, "staff member created")
	field(out, "id", st.ID)
	field(out, "login", st.Login)
	field(out, "rights level", st.RightsLevel)
	field(out, "employment", st.EmploymentStatus)
	return nil
}

var errEmptyPassword = errors.New("password must not be empty")

// readPassword prompts without echo when in is a terminal and reads one line
// otherwise.
func readPassword(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		_, _ = fmt.Fprint(prompt, "Password: ")
		raw, err := term.ReadPassword(int(f.Fd()))
		_, _ = fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return nonEmpty(string(raw))
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return nonEmpty(strings.TrimRight(line, "\r\n"))
}

func nonEmpty(password string) (string, error) {
	if password == "" {
		return "", errEmptyPassword
	}
	return password, nil
}
