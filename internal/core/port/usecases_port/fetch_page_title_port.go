package usecases_port

import "context"

type FetchPageTitleUseCase interface {
	Execute(ctx context.Context, url string) (string, error)
}
