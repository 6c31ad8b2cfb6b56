package commands

import (
	"github.com/spf13/cobra"

	"github.com/gaborage/go-scriptkit/integrations/placeholder"
)

// UsersOptions holds options for the users command
type UsersOptions struct {
	ID     int
	Posts  bool
	Create bool
	Title  string
	Body   string
}

// NewUsersCommand creates the users command
func NewUsersCommand() *cobra.Command {
	opts := &UsersOptions{}

	cmd := &cobra.Command{
		Use:   "users",
		Short: "Fetch a user, their posts, or create a post on JSONPlaceholder",
		Example: `  # Show user 1
  scriptkit users

  # Show user 3 and their posts
  scriptkit users --id 3 --posts

  # Create a post as user 1
  scriptkit users --create --title "Automation with Go"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUsers(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.ID, "id", 1, "User id")
	cmd.Flags().BoolVar(&opts.Posts, "posts", false, "Also list the user's posts")
	cmd.Flags().BoolVar(&opts.Create, "create", false, "Create a post instead of reading")
	cmd.Flags().StringVar(&opts.Title, "title", "Automation with Go", "Title of the created post")
	cmd.Flags().StringVar(&opts.Body, "body", "Learning API integration", "Body of the created post")

	return cmd
}

func runUsers(cmd *cobra.Command, opts *UsersOptions) error {
	a, err := appFrom(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	client := placeholder.NewClient(a.executor(a.cfg.Placeholder.BaseURL, nil))

	if opts.Create {
		post, err := client.CreatePost(ctx, placeholder.NewPost{UserID: opts.ID, Title: opts.Title, Body: opts.Body})
		if err != nil {
			return err
		}
		return a.printer.CreatedPost(post)
	}

	user, err := client.User(ctx, opts.ID)
	if err != nil {
		return err
	}

	var posts []placeholder.Post
	if opts.Posts {
		if posts, err = client.Posts(ctx, opts.ID); err != nil {
			return err
		}
		if posts == nil {
			posts = []placeholder.Post{}
		}
	}
	return a.printer.User(user, posts)
}
