package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/beevik/etree"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/sitevault/pkg/config"
	"github.com/arthur-debert/sitevault/pkg/errors"
	"github.com/arthur-debert/sitevault/pkg/logging"
	"github.com/arthur-debert/sitevault/pkg/site"
	"github.com/arthur-debert/sitevault/pkg/sitexml"
	"github.com/arthur-debert/sitevault/pkg/xmldoc"
)

// sitesElement returns the Sites container, creating it when asked.
func sitesElement(f *xmldoc.File, create bool) *etree.Element {
	sites := f.Root().SelectElement("Sites")
	if sites == nil && create {
		sites = f.Root().CreateElement("Sites")
	}
	return sites
}

// findSiteNode locates a Site node by its display name.
func findSiteNode(f *xmldoc.File, name string) *etree.Element {
	sites := sitesElement(f, false)
	if sites == nil {
		return nil
	}
	for _, node := range sites.SelectElements("Site") {
		s, err := sitexml.ReadSite(node)
		if err != nil {
			continue
		}
		if s.Server.Name == name {
			return node
		}
	}
	return nil
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored sites",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, _, err := openStore(false)
		if err != nil {
			return err
		}

		sites := sitesElement(f, false)
		if sites == nil || len(sites.SelectElements("Site")) == 0 {
			fmt.Println("No sites stored.")
			return nil
		}

		rows := pterm.TableData{{"Name", "Host", "Port", "Protocol", "Logon", "User"}}
		skipped := 0
		for _, node := range sites.SelectElements("Site") {
			s, err := sitexml.ReadSite(node)
			if err != nil {
				// One malformed profile must not hide the rest
				logger := logging.GetLogger("cmd.list")
				logger.Warn().Err(err).Msg("Skipping malformed site")
				skipped++
				continue
			}
			rows = append(rows, []string{
				s.Server.Name,
				s.Server.Host,
				strconv.Itoa(s.Server.Port),
				s.Server.Protocol.String(),
				s.Credentials.LogonType.String(),
				s.Credentials.User,
			})
		}

		if err := pterm.DefaultTable.WithHasHeader().WithData(rows).Render(); err != nil {
			return err
		}
		if skipped > 0 {
			pterm.Warning.Printfln("Skipped %d malformed site(s); run with -v for details", skipped)
		}
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show one site in detail",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, _, err := openStore(false)
		if err != nil {
			return err
		}

		node := findSiteNode(f, args[0])
		if node == nil {
			return errors.Newf(errors.ErrNotFound, "no site named %q", args[0])
		}
		s, err := sitexml.ReadSite(node)
		if err != nil {
			return err
		}

		printField("Name", s.Server.Name)
		printField("Host", fmt.Sprintf("%s:%d", s.Server.Host, s.Server.Port))
		printField("Protocol", s.Server.Protocol.String())
		printField("Logon", s.Credentials.LogonType.String())
		if s.Credentials.User != "" {
			printField("User", s.Credentials.User)
		}
		if s.Credentials.Protected() {
			printField("Password", "sealed under "+s.Credentials.EncryptedKey.Base64())
		}
		if s.Credentials.KeyFile != "" {
			printField("Keyfile", s.Credentials.KeyFile)
		}
		if s.Credentials.Account != "" {
			printField("Account", s.Credentials.Account)
		}
		if s.Server.TimezoneOffset != 0 {
			printField("Timezone offset", strconv.Itoa(s.Server.TimezoneOffset)+" min")
		}
		for _, p := range s.Server.ExtraParameters {
			printField(p.Name, p.Value)
		}
		return nil
	},
}

var (
	addHost     string
	addPort     int
	addProtocol int
	addUser     string
	addPassword string
)

var addCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add or replace a site",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, cfg, err := openStore(true)
		if err != nil {
			return err
		}
		sealer, err := cfg.Sealer()
		if err != nil {
			return err
		}

		s := &site.Site{}
		if err := s.Server.SetHost(addHost, addPort); err != nil {
			return err
		}
		protocol := site.Protocol(addProtocol)
		if !protocol.Valid() {
			return errors.Newf(errors.ErrInvalidInput, "unknown protocol %d", addProtocol)
		}
		s.Server.Protocol = protocol
		s.Server.SetName(args[0])

		if addUser != "" {
			s.Credentials.SetLogonType(site.Normal)
			s.Credentials.User = addUser
			s.Credentials.Password = addPassword
		}

		node := findSiteNode(f, s.Server.Name)
		if node == nil {
			node = sitesElement(f, true).CreateElement("Site")
		}
		if err := sitexml.WriteSite(node, s, sealer); err != nil {
			return err
		}
		if err := f.Save(true); err != nil {
			return err
		}

		pterm.Success.Printfln("Stored site %q", s.Server.Name)
		return nil
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a site",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, _, err := openStore(false)
		if err != nil {
			return err
		}

		node := findSiteNode(f, args[0])
		if node == nil {
			return errors.Newf(errors.ErrNotFound, "no site named %q", args[0])
		}
		sitesElement(f, false).RemoveChild(node)

		if err := f.Save(true); err != nil {
			return err
		}
		pterm.Success.Printfln("Removed site %q", args[0])
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the raw store document to stdout",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, _, err := openStore(false)
		if err != nil {
			return err
		}

		buf := make([]byte, f.RawDataLength())
		f.RawDataTo(buf)
		_, err = cmd.OutOrStdout().Write(buf)
		return err
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Replace the store document with one read from stdin",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}
		path := cfg.StorePath
		if storePath != "" {
			path = storePath
		}

		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return err
		}

		f := newStoreFile(path)
		if !f.ParseData(data) {
			return errors.New(errors.ErrParseFailure, "input is not a sitevault document")
		}
		return f.Save(true)
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the store file's health and version",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, _, err := openStore(false)
		if err != nil {
			return err
		}

		pterm.Info.Printfln("Store: %s", f.Path())
		if f.IsFromFutureVersion() {
			pterm.Warning.Printfln("The store was written by a newer version (%s); proceed with care",
				f.Root().SelectAttrValue("version", "unknown"))
		} else {
			pterm.Success.Println("Store version is compatible")
		}
		if f.Modified() {
			pterm.Info.Println("The file changed on disk since it was last recorded")
		}
		return nil
	},
}

var genconfigFormat string

var genconfigCmd = &cobra.Command{
	Use:   "genconfig",
	Short: "Print a default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		var data []byte
		var err error
		switch genconfigFormat {
		case "toml":
			data, err = config.DefaultTOML()
		case "yaml":
			data, err = config.DefaultYAML()
		default:
			return errors.Newf(errors.ErrInvalidInput, "unknown format %q (want toml or yaml)", genconfigFormat)
		}
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	addCmd.Flags().StringVar(&addHost, "host", "", "Server host (required)")
	addCmd.Flags().IntVar(&addPort, "port", 21, "Server port")
	addCmd.Flags().IntVar(&addProtocol, "protocol", 0, "Protocol number")
	addCmd.Flags().StringVar(&addUser, "user", "", "Username (switches logon type to normal)")
	addCmd.Flags().StringVar(&addPassword, "password", "", "Password")
	_ = addCmd.MarkFlagRequired("host")

	genconfigCmd.Flags().StringVar(&genconfigFormat, "format", "toml", "Output format: toml or yaml")
}

func printField(label, value string) {
	fmt.Printf("%s %s\n", styledLabel(label+":"), value)
}
