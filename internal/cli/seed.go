package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/amirasaad/brokerage/pkg/domain"
	"github.com/amirasaad/brokerage/pkg/domain/reference"
	"github.com/amirasaad/brokerage/pkg/dto"
	refsvc "github.com/amirasaad/brokerage/pkg/service/reference"
	usersvc "github.com/amirasaad/brokerage/pkg/service/user"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var seedOpts = seedOptions{Banks: 3, Securities: 12, Clients: 5}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the catalogue with demo data",
	Long: `Create demo currencies, banks, securities and client logins.
Existing currencies are kept; generated records that collide with existing
ones are skipped. Demo clients share the password given by --password.

Example:
  brokerage seed --banks 5 --securities 30 --seed 42`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().IntVar(&seedOpts.Banks, "banks", seedOpts.Banks, "number of banks to create")
	seedCmd.Flags().IntVar(&seedOpts.Securities, "securities", seedOpts.Securities, "number of securities to list")
	seedCmd.Flags().IntVar(&seedOpts.Clients, "clients", seedOpts.Clients, "number of client logins to register")
	seedCmd.Flags().StringVar(&seedOpts.Password, "password", "demo-password", "password of the demo clients")
	seedCmd.Flags().Uint64Var(&seedOpts.Seed, "seed", 0, "random seed (0 picks one from the clock)")
}

type seedOptions struct {
	Banks      int
	Securities int
	Clients    int
	Password   string
	Seed       uint64
	StaffID    int64
}

type seedReport struct {
	Currencies int
	Banks      int
	Securities int
	Clients    []string
	Skipped    int
}

// demoCurrencies are created with their rate to the base currency.
var demoCurrencies = []struct {
	code, symbol, rate string
}{
	{"RUB", "₽", "1"},
	{"USD", "$", "92.50"},
	{"EUR", "€", "99.80"},
	{"CNY", "¥", "12.70"},
}

var lotSizes = []int{1, 10, 100}

func runSeed(cmd *cobra.Command, args []string) error {
	uow, closeFn, err := openUoW()
	if err != nil {
		return err
	}
	defer closeFn()

	opts := seedOpts
	opts.StaffID = cfg.Roles.SystemStaffID
	if opts.Seed == 0 {
		opts.Seed = uint64(time.Now().UnixNano())
	}
	seeder := &seeder{
		refs:  refsvc.New(uow, cfg.Roles, logger),
		users: usersvc.New(uow, cfg.Roles, logger),
		faker: gofakeit.New(opts.Seed),
	}
	report, err := seeder.run(cmd.Context(), opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	success(out, "demo data created (seed %d)", opts.Seed)
	field(out, "currencies", report.Currencies)
	field(out, "banks", report.Banks)
	field(out, "securities", report.Securities)
	field(out, "clients", strings.Join(report.Clients, ", "))
	if report.Skipped > 0 {
		_, _ = warnColor.Fprintf(out, "  %d generated records collided with existing ones and were skipped\n", report.Skipped)
	}
	return nil
}

type seeder struct {
	refs  *refsvc.Service
	users *usersvc.Service
	faker *gofakeit.Faker
}

func (s *seeder) run(ctx context.Context, opts seedOptions) (*seedReport, error) {
	report := &seedReport{}

	var currencyIDs []int64
	for _, c := range demoCurrencies {
		cur, err := s.refs.CreateCurrency(ctx, dto.CurrencyCreate{
			Code:       c.code,
			Symbol:     c.symbol,
			RateToBase: decimal.RequireFromString(c.rate),
		})
		if err := s.skip(err, report); err != nil {
			return nil, fmt.Errorf("currency %s: %w", c.code, err)
		}
		if cur != nil {
			report.Currencies++
		}
	}
	existing, err := s.refs.ListCurrencies(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range existing {
		if !c.Archived {
			currencyIDs = append(currencyIDs, c.ID)
		}
	}
	if len(currencyIDs) == 0 {
		return nil, errors.New("no active currency to list securities in")
	}

	for range opts.Banks {
		b, err := s.refs.CreateBank(ctx, s.bank())
		if err := s.skip(err, report); err != nil {
			return nil, fmt.Errorf("bank: %w", err)
		}
		if b != nil {
			report.Banks++
		}
	}

	for range opts.Securities {
		in := s.security(currencyIDs)
		in.StaffID = opts.StaffID
		sec, err := s.refs.CreateStock(ctx, in)
		if err := s.skip(err, report); err != nil {
			return nil, fmt.Errorf("security %s: %w", in.Ticker, err)
		}
		if sec != nil {
			report.Securities++
		}
	}

	for range opts.Clients {
		u, err := s.users.Register(ctx, dto.UserCreate{
			Login:    s.faker.Username(),
			Email:    s.faker.Email(),
			Password: opts.Password,
		})
		if err := s.skip(err, report); err != nil {
			return nil, fmt.Errorf("client: %w", err)
		}
		if u != nil {
			report.Clients = append(report.Clients, u.Login)
		}
	}
	return report, nil
}

// skip swallows uniqueness conflicts so the seed can run against a populated
// catalogue.
func (s *seeder) skip(err error, report *seedReport) error {
	if errors.Is(err, domain.ErrAlreadyExists) {
		report.Skipped++
		return nil
	}
	return err
}

func (s *seeder) bank() dto.BankWrite {
	return dto.BankWrite{
		Name:              s.faker.Company() + " Bank",
		INN:               s.faker.Numerify("77########"),
		OGRN:              s.faker.Numerify("10277########"),
		BIK:               s.faker.Numerify("0445#####"),
		LicenseExpiryDate: time.Now().AddDate(s.faker.IntRange(1, 10), 0, 0).UTC(),
	}
}

func (s *seeder) security(currencyIDs []int64) dto.StockCreate {
	price := decimal.NewFromFloat(s.faker.Float64Range(5, 5000)).Round(2)
	return dto.StockCreate{
		Name:          s.faker.Company(),
		Ticker:        strings.ToUpper(s.faker.LetterN(4)),
		ISIN:          demoISIN(s.faker.RandomString([]string{"RU", "US", "DE", "CN"}), s.faker.Numerify("#########")),
		LotSize:       int64(s.faker.RandomInt(lotSizes)),
		Price:         price,
		CurrencyID:    currencyIDs[s.faker.IntN(len(currencyIDs))],
		PaysDividends: s.faker.Bool(),
	}
}

// demoISIN completes a country code and a nine character national number
// with the check digit that makes the identifier valid.
func demoISIN(country, nsin string) string {
	base := strings.ToUpper(country + nsin)
	for d := range 10 {
		isin := fmt.Sprintf("%s%d", base, d)
		if _, err := reference.NormalizeISIN(isin); err == nil {
			return isin
		}
	}
	return base + "0"
}
