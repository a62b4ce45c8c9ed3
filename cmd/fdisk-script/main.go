package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/osbuild/fdisk-script/pkg/datasizes"
	"github.com/osbuild/fdisk-script/pkg/disk"
	"github.com/osbuild/fdisk-script/pkg/script"
)

var (
	configFile string
	verbose    bool

	deviceFlag     string
	deviceSizeFlag string
	jsonFlag       bool
)

var rootCmd = &cobra.Command{
	Use:          "fdisk-script",
	Short:        "Read, convert and apply sfdisk-style partition scripts",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logrus.SetLevel(logrus.DebugLevel)
		}
	},
}

var dumpCmd = &cobra.Command{
	Use:   "dump SCRIPT",
	Short: "Parse a partition script and write it back out",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dev, err := contextFromFlags()
		if err != nil {
			return err
		}

		f, err := openScriptArg(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		s := script.New(dev)
		if err := s.ReadStream(f); err != nil {
			return err
		}
		s.EnableJSON(jsonFlag)
		return s.WriteFile(os.Stdout)
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify SCRIPT",
	Short: "Parse a partition script and report the first error",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dev, err := contextFromFlags()
		if err != nil {
			return err
		}

		f, err := openScriptArg(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		s := script.New(dev)
		if err := s.ReadStream(f); err != nil {
			return err
		}
		logrus.WithFields(logrus.Fields{
			"lines":      s.NLines(),
			"partitions": len(s.Table().Partitions),
		}).Info("script parsed")
		fmt.Printf("%s: OK (%d lines, %d partitions)\n", args[0], s.NLines(), len(s.Table().Partitions))
		return nil
	},
}

var applyCmd = &cobra.Command{
	Use:   "apply SCRIPT",
	Short: "Apply a partition script to a synthetic device and print the resulting layout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dev, err := contextFromFlags()
		if err != nil {
			return err
		}

		f, err := openScriptArg(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		s := script.New(dev)
		if err := s.ReadStream(f); err != nil {
			return err
		}
		if err := s.Apply(dev); err != nil {
			return err
		}

		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		dev.GenerateUUIDs(rng)

		result := script.New(dev)
		if err := result.ReadContext(dev); err != nil {
			return err
		}
		result.EnableJSON(jsonFlag)
		return result.WriteFile(os.Stdout)
	},
}

func contextFromFlags() (*disk.Context, error) {
	cfg, err := loadDeviceConfig(configFile)
	if err != nil {
		return nil, err
	}
	if deviceFlag != "" {
		cfg.Device = deviceFlag
	}
	if deviceSizeFlag != "" {
		var size datasizes.Size
		if err := size.UnmarshalTOML(deviceSizeFlag); err != nil {
			return nil, err
		}
		cfg.Size = size
	}
	return cfg.newContext(), nil
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "device configuration (TOML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&deviceFlag, "device", "d", "", "device node name used in dumps")
	rootCmd.PersistentFlags().StringVarP(&deviceSizeFlag, "device-size", "s", "", "device size, e.g. \"10 GiB\"")
	rootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "write JSON instead of the text dump format")

	rootCmd.AddCommand(dumpCmd, verifyCmd, applyCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
