// ABOUTME: Generic CRUD command builder for backend collections
// ABOUTME: One resource definition yields list, get, create, update and delete subcommands

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/gadibarra/panel-municipal/internal/client"
)

type (
	listFunc[T any]       func(*client.Client, context.Context, client.ListOptions) client.Response[client.Page[T]]
	getFunc[T any]        func(*client.Client, context.Context, client.ID) client.Response[T]
	createFunc[T, In any] func(*client.Client, context.Context, In) client.Response[T]
	updateFunc[T, In any] func(*client.Client, context.Context, client.ID, In) client.Response[T]
	deleteFunc            func(*client.Client, context.Context, client.ID) client.Response[client.Ack]
)

// resource describes one collection. Operations left nil get no subcommand.
type resource[T, In any] struct {
	use      string
	aliases  []string
	short    string
	noun     string
	feminine bool   // Spanish agreement for "creado/creada"
	estados  string // help text for --estado

	list   listFunc[T]
	get    getFunc[T]
	create createFunc[T, In]
	update updateFunc[T, In]
	remove deleteFunc

	headers []string
	row     func(T) []string
	detail  func(T) string
	// bind registers the input flags of create and update
	bind func(cmd *cobra.Command, in *In)
	// required lists flags create cannot do without
	required []string
}

// listFlags are shared by every listing
type listFlags struct {
	page   int
	size   int
	estado string
	search string
}

func (f *listFlags) register(cmd *cobra.Command, estados string) {
	cmd.Flags().IntVar(&f.page, "page", 1, "Page number, starting at 1")
	cmd.Flags().IntVar(&f.size, "size", 10, "Records per page")
	if estados != "" {
		cmd.Flags().StringVar(&f.estado, "estado", "", "Filter by estado: "+estados+" (all for none)")
		cmd.Flags().StringVar(&f.search, "search", "", "Free-text search")
	}
}

func (f *listFlags) options() client.ListOptions {
	return client.ListOptions{Page: max(f.page-1, 0), Size: f.size, Estado: f.estado, Search: f.search}
}

// command builds the parent command with its subcommands
func (r resource[T, In]) command() *cobra.Command {
	parent := &cobra.Command{
		Use:     r.use,
		Aliases: r.aliases,
		Short:   r.short,
	}

	if r.list != nil {
		var flags listFlags
		cmd := &cobra.Command{
			Use:   "list",
			Short: "List " + r.use,
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				runAndExit(cmd, func(ctx context.Context, w io.Writer, c *client.Client) int {
					return r.runList(ctx, w, c, flags.options())
				})
			},
		}
		flags.register(cmd, r.estados)
		parent.AddCommand(cmd)
	}

	if r.get != nil {
		parent.AddCommand(&cobra.Command{
			Use:   "get ID",
			Short: "Show one " + r.noun,
			Args:  cobra.ExactArgs(1),
			Run: func(cmd *cobra.Command, args []string) {
				runAndExit(cmd, func(ctx context.Context, w io.Writer, c *client.Client) int {
					return r.runGet(ctx, w, c, client.ID(args[0]))
				})
			},
		})
	}

	if r.create != nil {
		var in In
		cmd := &cobra.Command{
			Use:   "create",
			Short: "Create a " + r.noun,
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				runAndExit(cmd, func(ctx context.Context, w io.Writer, c *client.Client) int {
					return r.runCreate(ctx, w, c, in)
				})
			},
		}
		r.bind(cmd, &in)
		for _, name := range r.required {
			_ = cmd.MarkFlagRequired(name)
		}
		parent.AddCommand(cmd)
	}

	if r.update != nil {
		var in In
		cmd := &cobra.Command{
			Use:   "update ID",
			Short: "Update a " + r.noun + "; only the flags given are sent",
			Args:  cobra.ExactArgs(1),
			Run: func(cmd *cobra.Command, args []string) {
				runAndExit(cmd, func(ctx context.Context, w io.Writer, c *client.Client) int {
					return r.runUpdate(ctx, w, c, client.ID(args[0]), in)
				})
			},
		}
		r.bind(cmd, &in)
		parent.AddCommand(cmd)
	}

	if r.remove != nil {
		parent.AddCommand(&cobra.Command{
			Use:     "delete ID",
			Aliases: []string{"rm"},
			Short:   "Delete a " + r.noun,
			Args:    cobra.ExactArgs(1),
			Run: func(cmd *cobra.Command, args []string) {
				runAndExit(cmd, func(ctx context.Context, w io.Writer, c *client.Client) int {
					return r.runDelete(ctx, w, c, client.ID(args[0]))
				})
			},
		})
	}

	return parent
}

func (r resource[T, In]) runList(ctx context.Context, w io.Writer, c *client.Client, opts client.ListOptions) int {
	return report(w, r.list(c, ctx, opts), func(p client.Page[T]) string {
		return formatPage(p, r.headers, r.row)
	})
}

func (r resource[T, In]) runGet(ctx context.Context, w io.Writer, c *client.Client, id client.ID) int {
	return report(w, r.get(c, ctx, id), r.detail)
}

func (r resource[T, In]) runCreate(ctx context.Context, w io.Writer, c *client.Client, in In) int {
	return report(w, r.create(c, ctx, in), func(v T) string {
		return fmt.Sprintf("%s %s.\n%s", capitalize(r.noun), r.agree("cread"), r.detail(v))
	})
}

func (r resource[T, In]) runUpdate(ctx context.Context, w io.Writer, c *client.Client, id client.ID, in In) int {
	return report(w, r.update(c, ctx, id, in), func(v T) string {
		return fmt.Sprintf("%s %s.\n%s", capitalize(r.noun), r.agree("actualizad"), r.detail(v))
	})
}

func (r resource[T, In]) runDelete(ctx context.Context, w io.Writer, c *client.Client, id client.ID) int {
	return report(w, r.remove(c, ctx, id), func(a client.Ack) string {
		if a.Message != "" {
			return a.Message
		}
		return fmt.Sprintf("%s %s %s.", capitalize(r.noun), id, r.agree("eliminad"))
	})
}

// agree appends the gender ending to a participle stem
func (r resource[T, In]) agree(stem string) string {
	if r.feminine {
		return stem + "a"
	}
	return stem + "o"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	if r[0] >= 'a' && r[0] <= 'z' {
		r[0] -= 'a' - 'A'
	}
	return string(r)
}
