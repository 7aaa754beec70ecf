package service

import (
	"context"

	"offline-chat-be/internal/dto"
	"offline-chat-be/internal/repository/unitofwork"
	"offline-chat-be/pkg/search"
)

type ISearchService interface {
	Search(ctx context.Context, query string) (*dto.SearchResponse, error)
}

type searchService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewSearchService(uowFactory unitofwork.RepositoryFactory) ISearchService {
	return &searchService{uowFactory: uowFactory}
}

func (c *searchService) Search(ctx context.Context, query string) (*dto.SearchResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	chats, err := uow.ChatRepository().FindAll(ctx)
	if err != nil {
		return nil, err
	}
	notes, err := uow.NoteRepository().FindAll(ctx)
	if err != nil {
		return nil, err
	}

	hits := search.NewIndex(chats, notes).Search(query)
	results := make([]*dto.SearchResultResponse, 0, len(hits))
	for _, h := range hits {
		results = append(results, &dto.SearchResultResponse{
			Kind:      string(h.Kind),
			Id:        h.Id,
			Title:     h.Title,
			Category:  h.Category,
			Snippet:   h.Snippet,
			MatchedIn: string(h.MatchedIn),
			Timestamp: h.Timestamp,
		})
	}

	return &dto.SearchResponse{Query: query, Results: results}, nil
}
