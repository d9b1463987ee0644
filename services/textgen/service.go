package textgensvc

import (
	"context"
	"fmt"

	"github.com/trezcool/darasa/core"
)

// staticService phrases snippets from fixed templates. It stands in for the
// external generative-text collaborator in dev and tests; production wiring
// swaps in a client of the real service behind the same interface.
type staticService struct{}

var _ core.TextService = (*staticService)(nil)

func NewStaticService() core.TextService {
	return &staticService{}
}

func (svc staticService) PrepTitle(_ context.Context, assignmentTitle string) (string, error) {
	return fmt.Sprintf("Prep for %s", assignmentTitle), nil
}
