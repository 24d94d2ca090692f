// Command ledgerctl prints ledger reports in the terminal and applies schema
// migrations.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/pterm/pterm"
	log "github.com/sirupsen/logrus"

	config "github.com/avvvet/poker-ledger/configs"
	"github.com/avvvet/poker-ledger/internal/ledgersvc/db"
	"github.com/avvvet/poker-ledger/internal/ledgersvc/query"
	"github.com/avvvet/poker-ledger/internal/ledgersvc/service"
	"github.com/avvvet/poker-ledger/internal/ledgersvc/stats"
)

const SERVICE_NAME = "ctl"

const usage = `usage: ledgerctl <command> [flags]

commands:
  migrate                      apply pending schema migrations
  players                      list players
  games        [filters]       list games (default scope today)
  leaderboard                  all-time ranking by profit
  stats        -id N [filters] player statistics (default scope all)
  achievements -id N           unlocked achievements
  hands        [filters]       wins per hand (default scope today)

filters: -scope today|all -from YYYY-MM-DD -to YYYY-MM-DD -hand LABEL -player N -limit N
`

type app struct {
	players *service.PlayerService
	games   *service.GameService
	stats   *service.StatsService
	loc     *time.Location
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	// keep logrus quiet on the terminal; reports go through pterm
	log.SetLevel(log.WarnLevel)
	config.LoadEnv(SERVICE_NAME)

	settings, err := config.ParseSettings()
	if err != nil {
		pterm.Error.Printfln("invalid configuration: %s", err)
		os.Exit(1)
	}
	loc, err := settings.Location()
	if err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(1)
	}

	ctx := context.Background()
	ledger, err := db.Open(ctx, settings)
	if err != nil {
		pterm.Error.Printfln("open ledger: %s", err)
		os.Exit(1)
	}
	defer ledger.Close()

	a := &app{
		players: service.NewPlayerService(ledger),
		games:   service.NewGameService(ledger, nil, loc),
		stats:   service.NewStatsService(ledger, loc),
		loc:     loc,
	}

	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		pterm.Error.Println(err.Error())
		ledger.Close()
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	id := fs.Int64("id", 0, "player id")
	mode := fs.String("mode", string(stats.ModeFull), "stats mode: full or simplified")
	scope := fs.String("scope", "", "today or all")
	from := fs.String("from", "", "first date, inclusive")
	to := fs.String("to", "", "last date, inclusive")
	hand := fs.String("hand", "", "exact winning hand")
	player := fs.Int64("player", 0, "restrict to games won by this player")
	limit := fs.Int("limit", 0, "maximum games to list")
	if err := fs.Parse(args); err != nil {
		return err
	}

	filter := func(defaultScope query.Scope) (query.Filter, error) {
		return query.Parse(filterValues(*scope, *from, *to, *hand, *player, *limit), defaultScope, a.loc)
	}

	switch cmd {
	case "migrate":
		// db.Open has already brought the schema up to date
		pterm.Success.Println("schema is up to date")
		return nil

	case "players":
		players, err := a.players.ListPlayers(ctx)
		if err != nil {
			return err
		}
		return render(playersTable(players))

	case "games":
		f, err := filter(query.ScopeToday)
		if err != nil {
			return err
		}
		games, err := a.games.ListGames(ctx, f)
		if err != nil {
			return err
		}
		return render(gamesTable(games, a.loc))

	case "leaderboard":
		entries, err := a.stats.Leaderboard(ctx)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			pterm.Info.Println("no games recorded yet")
			return nil
		}
		return render(leaderboardTable(entries))

	case "stats":
		m, err := stats.ParseMode(*mode)
		if err != nil {
			return err
		}
		f, err := filter(query.ScopeAll)
		if err != nil {
			return err
		}
		ps, err := a.stats.PlayerStats(ctx, *id, f, m)
		if err != nil {
			return err
		}
		pterm.DefaultSection.Println(ps.Name)
		return render(statsTable(ps))

	case "achievements":
		pa, err := a.stats.Achievements(ctx, *id)
		if err != nil {
			return err
		}
		pterm.DefaultSection.Println(pa.Name)
		if len(pa.Achievements) == 0 {
			pterm.Info.Println("no achievements unlocked")
			return nil
		}
		return render(achievementsTable(pa.Achievements))

	case "hands":
		f, err := filter(query.ScopeToday)
		if err != nil {
			return err
		}
		counts, err := a.stats.HandCounts(ctx, f)
		if err != nil {
			return err
		}
		return render(handsTable(counts))

	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// filterValues maps command flags onto the query parameters used by the API.
func filterValues(scope, from, to, hand string, player int64, limit int) url.Values {
	v := url.Values{}
	set := func(k, val string) {
		if val != "" {
			v.Set(k, val)
		}
	}
	set("scope", scope)
	set("date_from", from)
	set("date_to", to)
	set("hand", hand)
	if player != 0 {
		v.Set("player_id", strconv.FormatInt(player, 10))
	}
	if limit != 0 {
		v.Set("limit", strconv.Itoa(limit))
	}
	return v
}

func render(data pterm.TableData) error {
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}
