package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kuflow/kuflow-sdk-go/pkg/client"
)

// pageFlags binds the paging flags shared by the list commands.
type pageFlags struct {
	page int
	size int
	sort []string
}

func (f *pageFlags) bind(c *cobra.Command) {
	c.Flags().IntVar(&f.page, "page", 0, "Page number, starting at 0")
	c.Flags().IntVar(&f.size, "size", 0, "Page size")
	c.Flags().StringSliceVar(&f.sort, "sort", nil, "Sort expressions, e.g. createdAt,desc")
}

func (f *pageFlags) options() client.PageOptions {
	return client.PageOptions{Page: f.page, Size: f.size, Sort: f.sort}
}

// pageFooter is printed below list tables.
func pageFooter(m client.PageMetadata) string {
	return fmt.Sprintf("page %d of %d, %d total\n", m.Page+1, max(m.TotalPages, 1), m.TotalElements)
}
