package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/pior/cps/request"
)

// paging holds the --offset, --docs and --list flags of listing commands.
type paging struct {
	offset int
	docs   int
	list   string
}

func (p *paging) register(cmd *cobra.Command, withList bool) {
	cmd.Flags().IntVar(&p.offset, "offset", 0, "Index of the first document returned")
	cmd.Flags().IntVar(&p.docs, "docs", 10, "Number of documents returned")
	if withList {
		cmd.Flags().StringVar(&p.list, "list", "", "Listing policy as a JSON object")
	}
}

func (p *paging) listPolicy() (request.Object, error) {
	if p.list == "" {
		return nil, nil
	}
	return parseObject(p.list)
}

// apply sets only the flags given on the command line.
func (p *paging) apply(cmd *cobra.Command, req *request.Request) error {
	if cmd.Flags().Changed("offset") {
		req.SetOffset(p.offset)
	}
	if cmd.Flags().Changed("docs") {
		req.SetDocs(p.docs)
	}
	list, err := p.listPolicy()
	if err != nil {
		return err
	}
	req.SetList(list)
	return nil
}

func addCommands(root *cobra.Command, opts *options) {
	root.AddCommand(
		searchCmd(opts),
		queryCmd(opts, "sql <query>", "Run an SQL-like search", func(q string) (*request.Request, error) {
			return request.SQLSearch(q), nil
		}),
		queryCmd(opts, "search-delete <query>", "Delete every document matching a query", func(q string) (*request.Request, error) {
			query, err := parseQuery(q)
			return request.SearchDelete(query), err
		}),
		queryCmd(opts, "list-words <query>", "List the indexed words matching a query", func(q string) (*request.Request, error) {
			query, err := parseQuery(q)
			return request.ListWords(query), err
		}),
		modifyCmd(opts, request.CmdInsert, "Insert documents"),
		modifyCmd(opts, request.CmdUpdate, "Update documents"),
		modifyCmd(opts, request.CmdReplace, "Replace documents"),
		modifyCmd(opts, request.CmdPartialReplace, "Replace parts of documents"),
		idsCmd(opts, "delete <id>...", "Delete documents by id", request.Delete),
		idsCmd(opts, "retrieve <id>...", "Retrieve documents by id", request.Retrieve),
		lookupCmd(opts),
		historyCmd(opts),
		alternativesCmd(opts),
		listCmd(opts, request.CmdListFirst, "List the first documents of the storage"),
		listCmd(opts, request.CmdListLast, "List the last documents of the storage"),
		listCmd(opts, request.CmdRetrieveFirst, "Retrieve the first documents of the storage"),
		listCmd(opts, request.CmdRetrieveLast, "Retrieve the last documents of the storage"),
		listFacetsCmd(opts),
		similarCmd(opts),
		simpleCmd(opts, "status", "Show server status", request.Status),
		simpleCmd(opts, "list-paths", "List the indexed paths", request.ListPaths),
		simpleCmd(opts, "begin", "Begin a transaction", request.BeginTransaction),
		simpleCmd(opts, "commit", "Commit the current transaction", request.CommitTransaction),
		simpleCmd(opts, "rollback", "Roll back the current transaction", request.RollbackTransaction),
		rawCmd(opts),
	)
}

func searchCmd(opts *options) *cobra.Command {
	var p paging
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search documents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := parseQuery(args[0])
			if err != nil {
				return err
			}
			req := request.Search(query)
			if err := p.apply(cmd, req); err != nil {
				return err
			}
			return opts.send(cmd, req)
		},
	}
	p.register(cmd, true)
	return cmd
}

func queryCmd(opts *options, use, short string, build func(string) (*request.Request, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := build(args[0])
			if err != nil {
				return err
			}
			return opts.send(cmd, req)
		},
	}
}

func modifyCmd(opts *options, command request.Command, short string) *cobra.Command {
	return &cobra.Command{
		Use:   command.String() + " <document>...",
		Short: short,
		Long:  short + ". Each document is raw XML or a JSON object.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := parseDocuments(args)
			if err != nil {
				return err
			}
			return opts.send(cmd, request.Modify(command, docs...))
		},
	}
}

func idsCmd(opts *options, use, short string, build func(...string) *request.Request) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.send(cmd, build(args...))
		},
	}
}

func lookupCmd(opts *options) *cobra.Command {
	var list string
	cmd := &cobra.Command{
		Use:   "lookup <id>...",
		Short: "Look up documents by id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var policy request.Object
			if list != "" {
				var err error
				if policy, err = parseObject(list); err != nil {
					return err
				}
			}
			return opts.send(cmd, request.Lookup(args, policy))
		},
	}
	cmd.Flags().StringVar(&list, "list", "", "Listing policy as a JSON object")
	return cmd
}

func historyCmd(opts *options) *cobra.Command {
	var withDocs bool
	cmd := &cobra.Command{
		Use:   "history <id>...",
		Short: "Show the revision history of documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.send(cmd, request.ShowHistory(args, withDocs))
		},
	}
	cmd.Flags().BoolVar(&withDocs, "docs", false, "Return the historical documents")
	return cmd
}

func alternativesCmd(opts *options) *cobra.Command {
	var cr, idif, h float64
	cmd := &cobra.Command{
		Use:   "alternatives <query>",
		Short: "Suggest alternative spellings for a query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := parseQuery(args[0])
			if err != nil {
				return err
			}
			return opts.send(cmd, request.Alternatives(query, cr, idif, h))
		},
	}
	cmd.Flags().Float64Var(&cr, "cr", 0, "Minimum ratio between the occurrence of an alternative and of the search term")
	cmd.Flags().Float64Var(&idif, "idif", 0, "Limit on how much an alternative may differ from the search term")
	cmd.Flags().Float64Var(&h, "h", 0, "Limit on the overall quality estimate of an alternative")
	return cmd
}

func listCmd(opts *options, command request.Command, short string) *cobra.Command {
	var p paging
	withList := command == request.CmdListFirst || command == request.CmdListLast
	cmd := &cobra.Command{
		Use:   command.String(),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := p.listPolicy()
			if err != nil {
				return err
			}
			return opts.send(cmd, request.ListLastRetrieveFirst(command, p.offset, p.docs, list))
		},
	}
	p.register(cmd, withList)
	return cmd
}

func listFacetsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list-facets <path>...",
		Short: "List the facets of indexed paths",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.send(cmd, request.ListFacets(args...))
		},
	}
}

func similarCmd(opts *options) *cobra.Command {
	var (
		id, text, query string
		length, quota   int
		p               paging
	)
	cmd := &cobra.Command{
		Use:   "similar",
		Short: "Find documents similar to a document or a text",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var req *request.Request
			switch {
			case id != "" && text != "":
				return errors.New("--id and --text are mutually exclusive")
			case id != "":
				req = request.SimilarDocuments(id, length, quota)
			case text != "":
				req = request.SimilarText(text, length, quota)
			default:
				return errors.New("one of --id or --text is required")
			}
			if query != "" {
				q, err := parseQuery(query)
				if err != nil {
					return err
				}
				req.SetQuery(q)
			}
			if err := p.apply(cmd, req); err != nil {
				return err
			}
			return opts.send(cmd, req)
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "Source document id")
	cmd.Flags().StringVar(&text, "text", "", "Source text")
	cmd.Flags().IntVar(&length, "len", 20, "Number of keywords extracted from the source")
	cmd.Flags().IntVar(&quota, "quota", 4, "Minimum number of keywords a match must contain")
	cmd.Flags().StringVar(&query, "query", "", "Restrict matches to a query")
	p.register(cmd, false)
	return cmd
}

func simpleCmd(opts *options, use, short string, build func() *request.Request) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.send(cmd, build())
		},
	}
}

func rawCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "raw <command> [json-template]",
		Short: "Build a request from a JSON template",
		Long: `Build a request from a JSON template. Recognized fields are applied, a
"command" field overrides the positional command, "_id" and "_document"
carry document ids and documents. Fields with unusable values are dropped.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var tpl request.Object
			if len(args) == 2 {
				var err error
				if tpl, err = parseObject(args[1]); err != nil {
					return err
				}
			}
			return opts.send(cmd, request.FromTemplate(request.Command(args[0]), tpl))
		},
	}
}
