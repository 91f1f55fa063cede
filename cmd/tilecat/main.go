package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strconv"

	"github.com/flanksource/commons/logger"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/flanksource/tilecat"
	"github.com/flanksource/tilecat/api"
	"github.com/flanksource/tilecat/config"
	"github.com/flanksource/tilecat/shutdown"
)

// Build information (set by goreleaser)
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	rootCmd := newRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tilecat",
		Short: "Manage a tile catalog and render PDF catalogs and quotations",
		Long: `tilecat keeps a catalog of tiles in a SQLite database. Tiles are added one
by one or imported from an Excel workbook with embedded pictures, and any
selection can be rendered as a poster cover followed by one page per tile, or as
a two column quotation grid.`,
		Example: `  tilecat import price-list.xlsx
  tilecat list
  tilecat render 3 1 7 --client "Acme Interiors" --name "acme offer"
  tilecat render 3 1 7 --layout cards`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			tilecat.Flags.UseFlags()
		},
	}

	tilecat.BindAllFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		newInitCommand(),
		newAddCommand(),
		newImportCommand(),
		newListCommand(),
		newDeleteCommand(),
		newRenderCommand(),
		newRenderTileCommand(),
		newInventoryCommand(),
		newCompanyCommand(),
		newVersionCommand(),
	)
	return rootCmd
}

// withCatalog opens the configured catalog for the duration of fn
func withCatalog(fn func(ctx context.Context, c *tilecat.Catalog) error) error {
	cfg, err := tilecat.Flags.LoadConfig()
	if err != nil {
		return err
	}
	c, err := tilecat.Open(cfg)
	if err != nil {
		return err
	}
	shutdown.AddHookWithPriority("catalog", shutdown.PriorityDatabase, func() {
		if err := c.Close(); err != nil {
			logger.Warnf("%v", err)
		}
	})
	defer shutdown.Shutdown()

	ctx, stop := shutdown.WithSignals(context.Background())
	defer stop()
	return fn(ctx, c)
}

func newInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file and create the catalog directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := tilecat.Flags.ConfigFile
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			cfg := config.DefaultConfig()
			if tilecat.Flags.Root != "" {
				cfg.Root = tilecat.Flags.Root
			}
			if err := cfg.Save(path); err != nil {
				return err
			}
			if err := cfg.EnsureDirs(); err != nil {
				return err
			}
			fmt.Printf("Configuration written to %s\n", path)
			return nil
		},
	}
}

func newAddCommand() *cobra.Command {
	var upload tilecat.TileUpload
	var photo string

	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Add a single tile",
		Example: `  tilecat add --name "carrara white" --size 600x1200 --finish glossy --photo carrara.jpg`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if photo != "" {
				data, err := os.ReadFile(photo)
				if err != nil {
					return fmt.Errorf("failed to read photo: %w", err)
				}
				upload.PhotoName = photo
				upload.Photo = data
			}
			return withCatalog(func(ctx context.Context, c *tilecat.Catalog) error {
				tile, err := c.UploadTile(ctx, upload)
				if err != nil {
					return err
				}
				fmt.Printf("Added tile %d %s\n", tile.ID, tile.Name)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&upload.Name, "name", "", "Design name (required)")
	cmd.Flags().StringVar(&upload.Size, "size", "", "Tile size, e.g. 600x600")
	cmd.Flags().StringVar(&upload.Finish, "finish", "", "Surface finish")
	cmd.Flags().StringVar(&upload.Description, "description", "", "Free text description")
	cmd.Flags().StringVar(&photo, "photo", "", "Photo file (.jpg, .jpeg or .png)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <workbook.xlsx>",
		Short: "Import tiles from an Excel workbook",
		Long: `Import one tile per row of the active sheet. Row 1 is a header; columns A to F
hold name, SKU, size, price, description and finish. A picture anchored in
column G becomes the tile photo. Rows without a name are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			return withCatalog(func(ctx context.Context, c *tilecat.Catalog) error {
				result, err := c.ImportSpreadsheet(ctx, args[0], f)
				if err != nil {
					return err
				}
				fmt.Printf("Imported %d tiles (%d rows, %d skipped)\n", len(result.Tiles), result.Rows, result.Skipped)
				for _, issue := range result.Issues {
					fmt.Fprintf(os.Stderr, "warning: %v\n", issue)
				}
				return nil
			})
		},
	}
}

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the catalog, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCatalog(func(ctx context.Context, c *tilecat.Catalog) error {
				tiles, err := c.ListTiles(ctx)
				if err != nil {
					return err
				}
				fmt.Print(formatTiles(os.Stdout, tiles))
				return nil
			})
		},
	}
}

func newDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete tiles and their photos",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCatalog(func(ctx context.Context, c *tilecat.Catalog) error {
				n, err := c.DeleteTiles(ctx, args)
				if err != nil {
					return err
				}
				fmt.Printf("Deleted %d tiles\n", n)
				return nil
			})
		},
	}
}

func newRenderCommand() *cobra.Command {
	var req api.RenderRequest
	var layout string

	cmd := &cobra.Command{
		Use:   "render <id>...",
		Short: "Render the selected tiles to a PDF catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := api.ParseLayout(layout)
			if err != nil {
				return err
			}
			req.IDs = args
			req.Layout = l
			return withCatalog(func(ctx context.Context, c *tilecat.Catalog) error {
				out, err := c.RenderSelection(ctx, req)
				if err != nil {
					return err
				}
				return save(c, out)
			})
		},
	}

	cmd.Flags().StringVar(&layout, "layout", string(api.LayoutTemplate), "Page layout: template or cards")
	cmd.Flags().StringVar(&req.ClientName, "client", "", "Client name printed on the cover or header")
	cmd.Flags().StringVar(&req.FileName, "name", "", "Output file name, .pdf is appended when missing")
	return cmd
}

func newRenderTileCommand() *cobra.Command {
	var clientName, fileName string

	cmd := &cobra.Command{
		Use:   "render-tile <id>",
		Short: "Render the cover and the page of a single tile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("%w: %q", api.ErrInvalidTileID, args[0])
			}
			return withCatalog(func(ctx context.Context, c *tilecat.Catalog) error {
				out, err := c.RenderTile(ctx, id, clientName, fileName)
				if err != nil {
					return err
				}
				return save(c, out)
			})
		},
	}

	cmd.Flags().StringVar(&clientName, "client", "", "Client name printed on the cover")
	cmd.Flags().StringVar(&fileName, "name", "", "Output file name, .pdf is appended when missing")
	return cmd
}

func newInventoryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inventory",
		Short: "Render a table of every tile to PDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCatalog(func(ctx context.Context, c *tilecat.Catalog) error {
				out, err := c.Inventory(ctx)
				if err != nil {
					return err
				}
				return save(c, out)
			})
		},
	}
}

func newCompanyCommand() *cobra.Command {
	var company api.Company
	var logo string

	cmd := &cobra.Command{
		Use:   "company",
		Short: "Show or set the branding of the card layout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCatalog(func(ctx context.Context, c *tilecat.Catalog) error {
				if !lo.SomeBy([]string{"name", "phone", "email", "logo"}, cmd.Flags().Changed) {
					current, err := c.Company(ctx)
					if err != nil {
						return err
					}
					if current.IsEmpty() {
						fmt.Println("No company branding configured")
						return nil
					}
					fmt.Printf("%s\nlogo: %s\n", current.FooterLine(), current.LogoPath)
					return nil
				}

				var data []byte
				if logo != "" {
					var err error
					if data, err = os.ReadFile(logo); err != nil {
						return fmt.Errorf("failed to read logo: %w", err)
					}
				}
				return c.SetCompany(ctx, company, logo, data)
			})
		},
	}

	cmd.Flags().StringVar(&company.Name, "name", "", "Company name")
	cmd.Flags().StringVar(&company.Phone, "phone", "", "Phone number")
	cmd.Flags().StringVar(&company.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&logo, "logo", "", "Logo image (.png, .jpg or .svg)")
	return cmd
}

func save(c *tilecat.Catalog, out *tilecat.Output) error {
	cfg := c.Config()
	path, err := out.Save(cfg.Path(cfg.OutputDir))
	if err != nil {
		return err
	}
	for _, issue := range out.Issues {
		fmt.Fprintf(os.Stderr, "warning: %v\n", issue)
	}
	fmt.Printf("Wrote %s (%d pages)\n", path, out.Pages)
	return nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(getVersionInfo())
		},
	}
}

func getVersionInfo() string {
	return fmt.Sprintf("tilecat %s (commit: %s, built: %s, go: %s)",
		version, commit, date, runtime.Version())
}
