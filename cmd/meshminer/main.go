// meshminer is the operator tool for a local mining pool state. It keeps
// rig registrations, reputations, and consumed proofs in a sqlite database
// and records token issuance into an append-only log for the bridge to
// pick up.
package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/meshnetd/go-meshminer/common/types"
	"github.com/meshnetd/go-meshminer/miner"
	"github.com/meshnetd/go-meshminer/signing"
	"github.com/meshnetd/go-meshminer/sql"
)

var (
	cfgFile   string
	dataDir   string
	keyFile   string
	logLevel  string
	adminAddr string
)

func init() {
	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "load engine parameters from file")
	root.PersistentFlags().StringVarP(&dataDir, "data", "d",
		filepath.Join(os.TempDir(), "meshminer"), "directory for the state database and issuance log")
	root.PersistentFlags().StringVar(&keyFile, "key", "rig.key", "path to the rig's hex-encoded private key")
	root.PersistentFlags().StringVar(&logLevel, "level", "info", "logging level")
	root.PersistentFlags().StringVar(&adminAddr, "admin", "", "hex address allowed to run privileged commands")

	root.AddCommand(generateKeyCmd, registerCmd, submitCmd, statsCmd, blacklistCmd, whitelistCmd, slashCmd)
}

var root = &cobra.Command{
	Use:           "meshminer",
	Short:         "manage rigs and work proofs of a local mining pool",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(strings.ToLower(logLevel))
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", logLevel, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	return cfg.Build()
}

func loadConfig() (miner.Config, error) {
	cfg := miner.DefaultConfig()
	if cfgFile == "" {
		return cfg, nil
	}
	v := viper.New()
	v.SetConfigFile(cfgFile)
	if err := v.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("read config %s: %w", cfgFile, err)
	}
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return cfg, fmt.Errorf("unmarshal config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// openEngine wires the engine over the pool database in the data directory.
// The returned closer flushes the issuance log and the database.
func openEngine(logger *zap.Logger) (*miner.Engine, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, nil, fmt.Errorf("create data dir %s: %w", dataDir, err)
	}
	db, err := sql.Open("file:"+filepath.Join(dataDir, "state.sql"),
		sql.WithLogger(logger.Named("sql")),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("open state database: %w", err)
	}
	issuer, err := newFileIssuer(filepath.Join(dataDir, "issuance.log"))
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	policy, err := newAdminPolicy(adminAddr)
	if err != nil {
		db.Close()
		issuer.Close()
		return nil, nil, err
	}
	verifier, err := signing.NewEdVerifier()
	if err != nil {
		db.Close()
		issuer.Close()
		return nil, nil, err
	}
	eng := miner.New(db, verifier, issuer, policy,
		miner.WithLogger(logger.Named("engine")),
		miner.WithConfig(cfg),
	)
	closer := func() {
		issuer.Close()
		db.Close()
	}
	return eng, closer, nil
}

var generateKeyCmd = &cobra.Command{
	Use:   "generate-key",
	Short: "generate a rig identity and write it to the key file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(keyFile); err == nil {
			return fmt.Errorf("key file %s already exists", keyFile)
		}
		signer, err := signing.NewEdSigner()
		if err != nil {
			return err
		}
		dst := make([]byte, hex.EncodedLen(len(signer.PrivateKey())))
		hex.Encode(dst, signer.PrivateKey())
		if err := os.WriteFile(keyFile, dst, 0o600); err != nil {
			return fmt.Errorf("write key file %s: %w", keyFile, err)
		}
		cmd.Printf("rig %s\n", signer.RigID())
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register <owner-address>",
	Short: "register the local rig with the given owning account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, err := parseAddress(args[0])
		if err != nil {
			return err
		}
		signer, err := signing.NewEdSigner(signing.FromFile(keyFile))
		if err != nil {
			return err
		}
		logger, err := newLogger()
		if err != nil {
			return err
		}
		defer logger.Sync()
		eng, closer, err := openEngine(logger)
		if err != nil {
			return err
		}
		defer closer()

		if err := eng.RegisterRig(cmd.Context(), signer.RigID(), owner); err != nil {
			return err
		}
		cmd.Printf("registered rig %s owner %s\n", signer.RigID(), owner)
		return nil
	},
}

var submitCmd = &cobra.Command{
	Use:   "submit <scoreboard.json>",
	Short: "sign and submit the work claims from a scoreboard file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		board, err := loadScoreboard(args[0])
		if err != nil {
			return err
		}
		signer, err := signing.NewEdSigner(signing.FromFile(keyFile))
		if err != nil {
			return err
		}
		logger, err := newLogger()
		if err != nil {
			return err
		}
		defer logger.Sync()
		eng, closer, err := openEngine(logger)
		if err != nil {
			return err
		}
		defer closer()

		var rejected int
		for _, claim := range board.Claims {
			sub := claim.sign(signer)
			receipt, err := eng.SubmitProof(cmd.Context(), sub)
			if reason := miner.RejectReasonOf(err); reason != types.RejectNone {
				rejected++
				cmd.Printf("rejected work=%d: %s\n", sub.Work, reason)
				continue
			}
			if err != nil {
				return err
			}
			cmd.Printf("accepted work=%d reward=%d score=%d digest=%s\n",
				sub.Work, receipt.Reward, receipt.Score, receipt.Digest.ShortString())
		}
		if rejected > 0 {
			return fmt.Errorf("%d of %d claims rejected", rejected, len(board.Claims))
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats [rig-id]",
	Short: "print the scoreboard of one rig, or of all registered rigs",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger()
		if err != nil {
			return err
		}
		defer logger.Sync()
		eng, closer, err := openEngine(logger)
		if err != nil {
			return err
		}
		defer closer()

		var ids []types.RigID
		if len(args) == 1 {
			id, err := parseRigID(args[0])
			if err != nil {
				return err
			}
			ids = append(ids, id)
		} else {
			all, err := eng.Rigs()
			if err != nil {
				return err
			}
			for _, rig := range all {
				ids = append(ids, rig.ID)
			}
		}
		for _, id := range ids {
			stats, err := eng.RigStats(id)
			if err != nil {
				return err
			}
			cmd.Printf("rig %s status=%s score=%d proofs=%d/%d work=%d last=%d\n",
				stats.RigID.ShortString(), stats.Status, stats.Score,
				stats.ValidProofs, stats.TotalProofs, stats.TotalWork, stats.LastSubmission)
		}
		return nil
	},
}

var blacklistCmd = &cobra.Command{
	Use:   "blacklist <rig-id> [reason]",
	Short: "block a rig from submitting proofs",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		reason := "operator decision"
		if len(args) == 2 {
			reason = args[1]
		}
		return runAdmin(cmd, args[0], func(ctx context.Context, eng *miner.Engine, actor types.Address, id types.RigID) error {
			return eng.Blacklist(ctx, actor, id, reason)
		})
	},
}

var whitelistCmd = &cobra.Command{
	Use:   "whitelist <rig-id>",
	Short: "reinstate a blacklisted rig",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAdmin(cmd, args[0], func(ctx context.Context, eng *miner.Engine, actor types.Address, id types.RigID) error {
			return eng.Whitelist(ctx, actor, id)
		})
	},
}

var slashCmd = &cobra.Command{
	Use:   "slash <rig-id> <penalty>",
	Short: "lower a rig's reputation score by the given penalty",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		penalty, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("cannot convert %v to penalty: %w", args[1], err)
		}
		return runAdmin(cmd, args[0], func(ctx context.Context, eng *miner.Engine, actor types.Address, id types.RigID) error {
			return eng.Slash(ctx, actor, id, penalty)
		})
	},
}

func runAdmin(
	cmd *cobra.Command,
	rig string,
	op func(context.Context, *miner.Engine, types.Address, types.RigID) error,
) error {
	if adminAddr == "" {
		return errors.New("privileged commands require --admin")
	}
	actor, err := parseAddress(adminAddr)
	if err != nil {
		return err
	}
	id, err := parseRigID(rig)
	if err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()
	eng, closer, err := openEngine(logger)
	if err != nil {
		return err
	}
	defer closer()
	return op(cmd.Context(), eng, actor, id)
}

func parseAddress(s string) (types.Address, error) {
	buf, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return types.Address{}, fmt.Errorf("cannot decode address %q: %w", s, err)
	}
	if len(buf) != types.AddressLength {
		return types.Address{}, fmt.Errorf("address %q must be %d bytes", s, types.AddressLength)
	}
	return types.BytesToAddress(buf), nil
}

func parseRigID(s string) (types.RigID, error) {
	buf, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return types.EmptyRigID, fmt.Errorf("cannot decode rig id %q: %w", s, err)
	}
	if len(buf) != len(types.EmptyRigID) {
		return types.EmptyRigID, fmt.Errorf("rig id %q must be %d bytes", s, len(types.EmptyRigID))
	}
	return types.BytesToRigID(buf), nil
}
