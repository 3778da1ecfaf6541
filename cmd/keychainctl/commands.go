package main

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/n1/keychain/internal/crypto"
	"github.com/n1/keychain/internal/keychain"
	"github.com/n1/keychain/internal/log"
	"github.com/n1/keychain/internal/resources"
	"github.com/urfave/cli/v2"
)

var sizeFlag = &cli.IntFlag{
	Name:    "size",
	Aliases: []string{"s"},
	Usage:   "Key length in bytes (16, 32 or 64)",
	Value:   32,
}

var putCmd = &cli.Command{
	Name:      "put",
	Usage:     "store a new key; fails if the name is taken",
	ArgsUsage: "<name>",
	Flags: []cli.Flag{
		sizeFlag,
		&cli.StringFlag{
			Name:  "hex",
			Usage: "Store this hex-encoded key instead of a random one",
		},
	},
	Action: func(c *cli.Context) error {
		name, err := nameArg(c)
		if err != nil {
			return err
		}
		if err := validSize(c.Int("size")); err != nil {
			return err
		}
		return withResources(c, func(r *resources.Core) error {
			raw, err := keyBytes(c)
			if err != nil {
				return err
			}
			fp := fingerprint(raw)
			if err := putSized(r.Keychain(), name, c.Int("size"), raw); err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "stored %s (%d bytes, %s) %s\n", name, c.Int("size"), r.Keychain().Kind(), fp)
			return nil
		})
	},
}

var getCmd = &cli.Command{
	Name:      "get",
	Usage:     "print the fingerprint of a stored key",
	ArgsUsage: "<name>",
	Flags: []cli.Flag{
		sizeFlag,
		&cli.BoolFlag{
			Name:  "reveal",
			Usage: "Print the key itself as hex",
		},
	},
	Action: func(c *cli.Context) error {
		name, err := nameArg(c)
		if err != nil {
			return err
		}
		if err := validSize(c.Int("size")); err != nil {
			return err
		}
		return withResources(c, func(r *resources.Core) error {
			raw, err := getSized(r.Keychain(), name, c.Int("size"))
			if err != nil {
				return err
			}
			defer crypto.Wipe(raw)

			if c.Bool("reveal") {
				log.Warn().Str("name", name.String()).Msg("Revealing key material")
				fmt.Fprintln(c.App.Writer, hex.EncodeToString(raw))
				return nil
			}
			fmt.Fprintln(c.App.Writer, fingerprint(raw))
			return nil
		})
	},
}

var deleteCmd = &cli.Command{
	Name:      "delete",
	Usage:     "remove a key; succeeds if it is already gone",
	ArgsUsage: "<name>",
	Action: func(c *cli.Context) error {
		name, err := nameArg(c)
		if err != nil {
			return err
		}
		return withResources(c, func(r *resources.Core) error {
			if err := r.Keychain().Delete(name); err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "deleted %s\n", name)
			return nil
		})
	},
}

var replaceCmd = &cli.Command{
	Name:      "replace",
	Usage:     "delete a key and store a new random one (not atomic)",
	ArgsUsage: "<name>",
	Flags:     []cli.Flag{sizeFlag},
	Action: func(c *cli.Context) error {
		name, err := nameArg(c)
		if err != nil {
			return err
		}
		// Checked before Delete so bad input never empties the name
		if err := validSize(c.Int("size")); err != nil {
			return err
		}
		return withResources(c, func(r *resources.Core) error {
			raw, err := crypto.Generate(c.Int("size"))
			if err != nil {
				return err
			}
			fp := fingerprint(raw)

			if err := r.Keychain().Delete(name); err != nil {
				crypto.Wipe(raw)
				return err
			}
			// A crash here leaves the name empty; rerunning replace recovers.
			if err := putSized(r.Keychain(), name, c.Int("size"), raw); err != nil {
				return fmt.Errorf("%s was deleted but not replaced: %w", name, err)
			}
			fmt.Fprintf(c.App.Writer, "replaced %s %s\n", name, fp)
			return nil
		})
	},
}

var namesCmd = &cli.Command{
	Name:  "names",
	Usage: "list the key names this build knows",
	Action: func(c *cli.Context) error {
		for _, n := range keychain.Names() {
			fmt.Fprintln(c.App.Writer, n)
		}
		return nil
	},
}

var infoCmd = &cli.Command{
	Name:  "info",
	Usage: "show the active backend and device identity",
	Action: func(c *cli.Context) error {
		return withResources(c, func(r *resources.Core) error {
			fmt.Fprintf(c.App.Writer, "backend:   %s\n", r.Keychain().Kind())
			fmt.Fprintf(c.App.Writer, "platform:  %s\n", keychain.PlatformDefault())
			fmt.Fprintf(c.App.Writer, "device id: %s\n", r.DeviceID())
			if r.DeviceName() != "" {
				fmt.Fprintf(c.App.Writer, "device:    %s\n", r.DeviceName())
			}
			return nil
		})
	},
}

func nameArg(c *cli.Context) (keychain.Name, error) {
	if c.NArg() != 1 {
		return 0, cli.Exit(fmt.Sprintf("Usage: %s %s", c.Command.Name, c.Command.ArgsUsage), 1)
	}
	return keychain.ParseName(c.Args().First())
}

// keyBytes returns the --hex key or a fresh random one.
func keyBytes(c *cli.Context) ([]byte, error) {
	if !c.IsSet("hex") {
		return crypto.Generate(c.Int("size"))
	}
	raw, err := hex.DecodeString(c.String("hex"))
	if err != nil {
		return nil, fmt.Errorf("invalid --hex: %w", err)
	}
	return raw, nil
}

// fingerprint identifies a key without revealing it.
func fingerprint(raw []byte) string {
	sum := sha256.Sum256(raw)
	return "sha256:" + hex.EncodeToString(sum[:8])
}

var errBadSize = errors.New("size must be 16, 32 or 64")

func validSize(size int) error {
	switch size {
	case 16, 32, 64:
		return nil
	default:
		return fmt.Errorf("%w, got %d", errBadSize, size)
	}
}

// putSized hands raw to PutLocal as a key of the requested size. raw is
// consumed on success and wiped on failure.
func putSized(kc *keychain.Keychain, name keychain.Name, size int, raw []byte) error {
	var err error
	switch size {
	case 16:
		err = put[keychain.Size16](kc, name, raw)
	case 32:
		err = put[keychain.Size32](kc, name, raw)
	case 64:
		err = put[keychain.Size64](kc, name, raw)
	default:
		err = errBadSize
	}
	if err != nil {
		crypto.Wipe(raw)
	}
	return err
}

func put[N keychain.Size](kc *keychain.Keychain, name keychain.Name, raw []byte) error {
	key, err := keychain.NewKeyMaterial[N](raw)
	if err != nil {
		return err
	}
	return keychain.PutLocal(kc, name, key)
}

// getSized reads a key of the requested size and returns its bytes,
// which the caller must wipe.
func getSized(kc *keychain.Keychain, name keychain.Name, size int) ([]byte, error) {
	switch size {
	case 16:
		return get[keychain.Size16](kc, name)
	case 32:
		return get[keychain.Size32](kc, name)
	case 64:
		return get[keychain.Size64](kc, name)
	default:
		return nil, errBadSize
	}
}

func get[N keychain.Size](kc *keychain.Keychain, name keychain.Name) ([]byte, error) {
	key, err := keychain.Get[N](kc, name)
	if err != nil {
		return nil, err
	}
	return key.Bytes(), nil
}
