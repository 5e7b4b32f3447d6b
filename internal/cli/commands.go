package cli

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"readlog/internal/auth"
	"readlog/pkg/models"
)

func newLoginCommand(opts *RootOptions) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in as the owner and save the token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				return fmt.Errorf("--password is required")
			}
			var td tokenData
			err := doJSON(cmd.Context(), opts.Client, http.MethodPost, opts.endpoint("/auth/login", nil), "",
				map[string]string{"password": password}, &td)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			if err := saveToken(opts.TokenFile, td); err != nil {
				return fmt.Errorf("save token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "logged in")
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "owner password")
	return cmd
}

func newLogoutCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := clearToken(opts.TokenFile); err != nil {
				return fmt.Errorf("logout failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}

type addOptions struct {
	title, author, year, month, format, context string
	unsure                                      bool
}

func newAddCommand(opts *RootOptions) *cobra.Command {
	var a addOptions
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record that you read a book",
		Example: `  readlog add --title "Dune" --author "Frank Herbert" --year 2023 --month January --format "print book"
  readlog add --title "Dune" --author "Frank Herbert" --format audiobook --context "on the train"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.title == "" || a.author == "" {
				return fmt.Errorf("--title and --author are required")
			}
			unsure := "0"
			if a.unsure {
				unsure = "1"
			}
			payload := map[string]string{
				"title":          a.title,
				"author":         a.author,
				"read_year":      a.year,
				"read_month":     a.month,
				"unsure_of_date": unsure,
				"format":         a.format,
				"context":        a.context,
			}
			var book models.Book
			if err := opts.send(cmd.Context(), http.MethodPost, "/readings", payload, &book); err != nil {
				return err
			}
			if opts.Output == "json" {
				return printJSON(cmd.OutOrStdout(), book)
			}
			printBook(cmd.OutOrStdout(), book)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&a.title, "title", "", "book title")
	f.StringVar(&a.author, "author", "", "book author")
	f.StringVar(&a.year, "year", "", "year read")
	f.StringVar(&a.month, "month", "", "month read, full English name")
	f.BoolVar(&a.unsure, "unsure", false, "the date is a guess")
	f.StringVar(&a.format, "format", "", "audiobook, kindle or print book")
	f.StringVar(&a.context, "context", "", "free-form note")
	return cmd
}

func newUndoCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "undo",
		Short: "Delete the most recently recorded read",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var r models.Retraction
			if err := opts.send(cmd.Context(), http.MethodDelete, "/readings/last", nil, &r); err != nil {
				return err
			}
			if opts.Output == "json" {
				return printJSON(cmd.OutOrStdout(), r)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "removed read #%d of %s by %s\n", r.ReadInstanceID, r.Title, r.Author)
			if r.BookRemoved {
				fmt.Fprintln(w, "that was the only read; the book is gone")
			} else if r.Book != nil {
				printBook(w, *r.Book)
			}
			return nil
		},
	}
}

func newLastCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "last",
		Short: "Show the most recently recorded read",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var ri models.ReadInstance
			if err := opts.get(cmd.Context(), "/readings/last", nil, &ri); err != nil {
				return err
			}
			if opts.Output == "json" {
				return printJSON(cmd.OutOrStdout(), ri)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "The last book you read was %s by %s.\n", ri.Title, ri.Author)
			return nil
		},
	}
}

func newTimesReadCommand(opts *RootOptions) *cobra.Command {
	var title, author string
	cmd := &cobra.Command{
		Use:   "times-read",
		Short: "How many times you have read a book",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{"title": {title}}
			if author != "" {
				q.Set("author", author)
			}
			var resp struct {
				Title     string `json:"title"`
				Author    string `json:"author"`
				TimesRead int    `json:"times_read"`
			}
			if err := opts.get(cmd.Context(), "/books/times-read", q, &resp); err != nil {
				return err
			}
			if opts.Output == "json" {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "You've read %s by %s %d time(s).\n", resp.Title, resp.Author, resp.TimesRead)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "book title, matched loosely")
	cmd.Flags().StringVar(&author, "author", "", "author, matched loosely")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newLastReadCommand(opts *RootOptions) *cobra.Command {
	var title string
	cmd := &cobra.Command{
		Use:   "last-read",
		Short: "When you last read each book matching a title",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp struct {
				Items []struct {
					Title        string `json:"title"`
					Author       string `json:"author"`
					LastReadYear int    `json:"last_read_year"`
					MonthName    string `json:"month_name"`
				} `json:"items"`
			}
			if err := opts.get(cmd.Context(), "/books/last-read", url.Values{"title": {title}}, &resp); err != nil {
				return err
			}
			if opts.Output == "json" {
				return printJSON(cmd.OutOrStdout(), resp.Items)
			}
			for _, it := range resp.Items {
				fmt.Fprintf(cmd.OutOrStdout(), "You read %s in %s.\n", it.Title, readDate(it.MonthName, it.LastReadYear))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "book title, matched loosely")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newCountCommand(opts *RootOptions) *cobra.Command {
	var year int
	cmd := &cobra.Command{
		Use:   "count",
		Short: "How many reads were recorded for a year",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var q url.Values
			if year != 0 {
				q = url.Values{"year": {strconv.Itoa(year)}}
			}
			var resp struct {
				Year  int `json:"year"`
				Count int `json:"count"`
			}
			if err := opts.get(cmd.Context(), "/readings/count", q, &resp); err != nil {
				return err
			}
			if opts.Output == "json" {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "You read %d book(s) in %d.\n", resp.Count, resp.Year)
			return nil
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "year to count (default: current year)")
	return cmd
}

type page[T any] struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Items  []T `json:"items"`
}

func newBooksCommand(opts *RootOptions) *cobra.Command {
	var (
		query         string
		limit, offset int
	)
	cmd := &cobra.Command{
		Use:   "books",
		Short: "List books",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{
				"limit":  {strconv.Itoa(limit)},
				"offset": {strconv.Itoa(offset)},
			}
			if query != "" {
				q.Set("q", query)
			}
			var resp page[models.Book]
			if err := opts.get(cmd.Context(), "/books", q, &resp); err != nil {
				return err
			}
			if opts.Output == "json" {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			for _, b := range resp.Items {
				printBook(cmd.OutOrStdout(), b)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d book(s)\n", len(resp.Items), resp.Total)
			return nil
		},
	}
	cmd.Flags().StringVar(&query, "q", "", "search title and author")
	cmd.Flags().IntVar(&limit, "limit", 20, "page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "offset")
	return cmd
}

func newHistoryCommand(opts *RootOptions) *cobra.Command {
	var (
		title, author string
		limit, offset int
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded reads, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{
				"limit":  {strconv.Itoa(limit)},
				"offset": {strconv.Itoa(offset)},
			}
			if title != "" {
				q.Set("title", title)
			}
			if author != "" {
				q.Set("author", author)
			}
			var resp page[models.ReadInstance]
			if err := opts.get(cmd.Context(), "/readings", q, &resp); err != nil {
				return err
			}
			if opts.Output == "json" {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			for _, ri := range resp.Items {
				printReadInstance(cmd.OutOrStdout(), ri)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "exact title")
	cmd.Flags().StringVar(&author, "author", "", "exact author")
	cmd.Flags().IntVar(&limit, "limit", 50, "page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "offset")
	return cmd
}

func newHashPasswordCommand() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Print a bcrypt hash for READLOG_OWNER_PASSWORD_HASH",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				return fmt.Errorf("--password is required")
			}
			hash, err := auth.HashPassword(password)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "password to hash")
	return cmd
}
