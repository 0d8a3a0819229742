package main

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/davecgh/go-spew/spew"
	"github.com/urfave/cli/v2"

	"github.com/bitfsorg/libcryptonote-go/address"
	"github.com/bitfsorg/libcryptonote-go/cnutil"
	"github.com/bitfsorg/libcryptonote-go/fork"
	"github.com/bitfsorg/libcryptonote-go/hashing"
	"github.com/bitfsorg/libcryptonote-go/store"
	"github.com/bitfsorg/libcryptonote-go/wire"
)

func hexArg(c *cli.Context, i int, name string) ([]byte, error) {
	if c.NArg() <= i {
		return nil, usageError(c, c.Command.ArgsUsage)
	}
	b, err := hex.DecodeString(strings.TrimSpace(c.Args().Get(i)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return b, nil
}

func printHex(c *cli.Context, b []byte) error {
	_, err := fmt.Fprintln(c.App.Writer, hex.EncodeToString(b))
	return err
}

func parentProfileFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "parent-profile",
		Usage:    "fork profile of the parent chain",
		Required: true,
	}
}

func profilesCommand() *cli.Command {
	return &cli.Command{
		Name:  "profiles",
		Usage: "List the supported fork profiles",
		Action: func(c *cli.Context) error {
			w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tNONCE\tCYCLE\tMERGED")
			for _, p := range fork.All() {
				fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%t\n", p.ID, p.Name, p.NonceSize, p.CycleLength, p.Merged)
			}
			return w.Flush()
		},
	}
}

func convertBlobCommand() *cli.Command {
	return &cli.Command{
		Name:      "convert-blob",
		Usage:     "Convert a block template into its hashing blob",
		ArgsUsage: "<template-hex>",
		Action: func(c *cli.Context) error {
			e := getEnv(c)
			blob, err := hexArg(c, 0, "template")
			if err != nil {
				return err
			}
			out, err := e.util.ConvertBlob(blob, e.profile)
			if err != nil {
				return err
			}
			return printHex(c, out)
		},
	}
}

func blockIDCommand() *cli.Command {
	return &cli.Command{
		Name:      "block-id",
		Usage:     "Print the id of a block",
		ArgsUsage: "<block-hex>",
		Action: func(c *cli.Context) error {
			e := getEnv(c)
			blob, err := hexArg(c, 0, "block")
			if err != nil {
				return err
			}
			id, err := e.util.BlockID(blob, e.profile)
			if err != nil {
				return err
			}
			return printHex(c, id[:])
		},
	}
}

func powHashCommand() *cli.Command {
	return &cli.Command{
		Name:      "pow-hash",
		Usage:     "Digest the hashing blob of a template with the registered Keccak digester",
		ArgsUsage: "<template-hex>",
		Flags: []cli.Flag{
			&cli.Uint64Flag{Name: "height", Usage: "block height passed to the digester"},
		},
		Action: func(c *cli.Context) error {
			e := getEnv(c)
			blob, err := hexArg(c, 0, "template")
			if err != nil {
				return err
			}
			h, err := e.util.PowHash(blob, e.profile, c.Uint64("height"))
			if err != nil {
				return err
			}
			return printHex(c, h[:])
		},
	}
}

func parseCycle(s string) ([]uint32, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]uint32, len(parts))
	for i, part := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(part), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("cycle value %d: %w", i, err)
		}
		out[i] = uint32(v)
	}
	return out, nil
}

func constructBlockCommand() *cli.Command {
	return &cli.Command{
		Name:      "construct-block",
		Usage:     "Write a found nonce (and cycle) into a block template",
		ArgsUsage: "<template-hex>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "nonce", Usage: "little-endian nonce as hex", Required: true},
			&cli.StringFlag{Name: "cycle", Usage: "comma separated cuckoo cycle values"},
		},
		Action: func(c *cli.Context) error {
			e := getEnv(c)
			template, err := hexArg(c, 0, "template")
			if err != nil {
				return err
			}
			nonce, err := hex.DecodeString(c.String("nonce"))
			if err != nil {
				return fmt.Errorf("nonce: %w", err)
			}
			cycle, err := parseCycle(c.String("cycle"))
			if err != nil {
				return err
			}
			out, err := e.util.ConstructBlockBlob(template, nonce, e.profile, cycle)
			if err != nil {
				return err
			}
			return printHex(c, out)
		},
	}
}

func decodeTxCommand() *cli.Command {
	return &cli.Command{
		Name:      "decode-tx",
		Usage:     "Decode a transaction and print its summary",
		ArgsUsage: "<tx-hex>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "dump", Usage: "dump the whole decoded structure"},
		},
		Action: func(c *cli.Context) error {
			e := getEnv(c)
			blob, err := hexArg(c, 0, "transaction")
			if err != nil {
				return err
			}
			tx, err := e.util.DecodeTransaction(blob, e.profile)
			if err != nil {
				return err
			}
			if c.Bool("dump") {
				spew.Fdump(c.App.Writer, tx)
				return nil
			}

			id, err := hashing.Default.TransactionHash(tx, e.profile)
			if err != nil {
				return err
			}
			w := c.App.Writer
			fmt.Fprintf(w, "hash:        %s\n", id)
			fmt.Fprintf(w, "version:     %d\n", tx.Version)
			fmt.Fprintf(w, "unlock_time: %d\n", tx.UnlockTime)
			fmt.Fprintf(w, "inputs:      %d\n", len(tx.Inputs))
			fmt.Fprintf(w, "outputs:     %d\n", len(tx.Outputs))
			if h, err := wire.BlockHeight(&wire.Block{MinerTx: *tx}); err == nil {
				fmt.Fprintf(w, "height:      %d\n", h)
			} else if fee, err := wire.TransactionFee(&tx.TransactionPrefix); err == nil {
				fmt.Fprintf(w, "fee:         %d\n", fee)
			}
			if key, ok := wire.TxPubKeyFromExtra(tx.Extra); ok {
				fmt.Fprintf(w, "tx_pubkey:   %s\n", key)
			}
			return nil
		},
	}
}

func decodeAddressCommand() *cli.Command {
	return &cli.Command{
		Name:      "decode-address",
		Usage:     "Decode a standard or integrated address",
		ArgsUsage: "<address>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "integrated", Usage: "expect an integrated address"},
		},
		Action: func(c *cli.Context) error {
			e := getEnv(c)
			if c.NArg() < 1 {
				return usageError(c, c.Command.ArgsUsage)
			}
			text := strings.TrimSpace(c.Args().First())
			decode, allowed := cnutil.DecodeAddress, e.cfg.AddressPrefix
			if c.Bool("integrated") {
				decode, allowed = cnutil.DecodeIntegratedAddress, e.cfg.IntegratedPrefix
			}
			res, err := decode(text)
			if err != nil {
				return err
			}

			w := c.App.Writer
			if !res.Valid() {
				fmt.Fprintf(w, "raw:         %s\n", hex.EncodeToString(res.Raw))
				return nil
			}
			a := res.Address
			fmt.Fprintf(w, "prefix:      %d\n", a.Prefix)
			fmt.Fprintf(w, "spend_key:   %s\n", a.SpendKey)
			fmt.Fprintf(w, "view_key:    %s\n", a.ViewKey)
			if a.Integrated {
				fmt.Fprintf(w, "payment_id:  %s\n", hex.EncodeToString(a.PaymentID[:]))
			}
			if err := address.ValidatePrefix(a, allowed); err != nil {
				e.logger.Warn().Err(err).Uint64("prefix", a.Prefix).Msg("address prefix not configured for this coin")
			}
			return nil
		},
	}
}

func mmParentCommand() *cli.Command {
	return &cli.Command{
		Name:      "mm-parent",
		Usage:     "Splice the merge-mining tag of a child template into a parent template",
		ArgsUsage: "<parent-template-hex> <child-template-hex>",
		Flags:     []cli.Flag{parentProfileFlag()},
		Action: func(c *cli.Context) error {
			e := getEnv(c)
			parentProfile, err := fork.ByName(c.String("parent-profile"))
			if err != nil {
				return err
			}
			parent, err := hexArg(c, 0, "parent template")
			if err != nil {
				return err
			}
			child, err := hexArg(c, 1, "child template")
			if err != nil {
				return err
			}
			out, err := e.util.ConstructMMParentBlockBlob(parent, parentProfile, child)
			if err != nil {
				return err
			}
			return printHex(c, out)
		},
	}
}

func mmChildCommand() *cli.Command {
	return &cli.Command{
		Name:      "mm-child",
		Usage:     "Fold a solved parent share into a child template",
		ArgsUsage: "<share-hex> <child-template-hex>",
		Flags:     []cli.Flag{parentProfileFlag()},
		Action: func(c *cli.Context) error {
			e := getEnv(c)
			parentProfile, err := fork.ByName(c.String("parent-profile"))
			if err != nil {
				return err
			}
			share, err := hexArg(c, 0, "share")
			if err != nil {
				return err
			}
			child, err := hexArg(c, 1, "child template")
			if err != nil {
				return err
			}
			out, err := e.util.ConstructMMChildBlockBlob(share, parentProfile, child)
			if err != nil {
				return err
			}
			return printHex(c, out)
		},
	}
}

func nonceSizeCommand() *cli.Command {
	return &cli.Command{
		Name:  "nonce-size",
		Usage: "Print the extra nonce bytes to reserve for merge mining",
		Action: func(c *cli.Context) error {
			_, err := fmt.Fprintln(c.App.Writer, cnutil.MergedMiningNonceSize())
			return err
		},
	}
}

func printTemplate(c *cli.Context, t *store.Template) error {
	p, err := fork.ByID(t.Profile)
	if err != nil {
		return err
	}
	w := c.App.Writer
	fmt.Fprintf(w, "job:         %s\n", t.JobID)
	fmt.Fprintf(w, "profile:     %s\n", p)
	fmt.Fprintf(w, "height:      %d\n", t.Height)
	fmt.Fprintf(w, "reserved:    %d\n", t.ReservedOffset)
	fmt.Fprintf(w, "created:     %s\n", t.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"))
	fmt.Fprintf(w, "blob:        %s\n", hex.EncodeToString(t.Blob))
	return nil
}

func templateCommand() *cli.Command {
	return &cli.Command{
		Name:  "template",
		Usage: "Store and look up issued block templates",
		Subcommands: []*cli.Command{
			{
				Name:      "put",
				Usage:     "Store a template under a job id",
				ArgsUsage: "<template-hex>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "job", Usage: "job id", Required: true},
					&cli.IntFlag{Name: "reserved-offset", Usage: "offset of the reserved extra nonce space"},
				},
				Action: func(c *cli.Context) error {
					e := getEnv(c)
					blob, err := hexArg(c, 0, "template")
					if err != nil {
						return err
					}
					blk, err := e.util.DecodeBlock(blob, e.profile)
					if err != nil {
						return err
					}
					height, err := wire.BlockHeight(blk)
					if err != nil {
						return err
					}
					s, err := e.openStore()
					if err != nil {
						return err
					}
					t := &store.Template{
						JobID:          c.String("job"),
						Profile:        e.profile.ID,
						Height:         height,
						Blob:           blob,
						ReservedOffset: c.Int("reserved-offset"),
					}
					if err := s.Put(t); err != nil {
						return err
					}
					e.logger.Info().Str("job", t.JobID).Uint64("height", height).Msg("template stored")
					return nil
				},
			},
			{
				Name:      "get",
				Usage:     "Print the template stored under a job id",
				ArgsUsage: "<job>",
				Action: func(c *cli.Context) error {
					e := getEnv(c)
					if c.NArg() < 1 {
						return usageError(c, c.Command.ArgsUsage)
					}
					s, err := e.openStore()
					if err != nil {
						return err
					}
					t, err := s.Get(c.Args().First())
					if err != nil {
						return err
					}
					return printTemplate(c, t)
				},
			},
			{
				Name:  "latest",
				Usage: "Print the highest template of the configured profile",
				Action: func(c *cli.Context) error {
					e := getEnv(c)
					s, err := e.openStore()
					if err != nil {
						return err
					}
					t, err := s.Latest(e.profile.ID)
					if err != nil {
						return err
					}
					return printTemplate(c, t)
				},
			},
			{
				Name:  "prune",
				Usage: "Remove expired templates",
				Action: func(c *cli.Context) error {
					e := getEnv(c)
					s, err := e.openStore()
					if err != nil {
						return err
					}
					n, err := s.Prune()
					if err != nil {
						return err
					}
					_, err = fmt.Fprintln(c.App.Writer, n)
					return err
				},
			},
		},
	}
}
