package transaction

import (
	"strings"

	"github.com/Additional-Code/orderdesk/internal/config"
	"github.com/Additional-Code/orderdesk/internal/entity"
	repo "github.com/Additional-Code/orderdesk/internal/repository/transaction"
	"github.com/Additional-Code/orderdesk/pkg/errorbank"
)

// ListQuery is a list request as received from a caller. Zero values fall back
// to defaults: active rows, newest first, the configured page size.
type ListQuery struct {
	Trashed   repo.Trashed
	Search    string
	Sort      string
	Direction string
	Page      int
	PerPage   int
}

func (q ListQuery) resolve(cfg config.Listing) (repo.Query, error) {
	problems := map[string]string{}

	sort := strings.TrimSpace(q.Sort)
	if sort != "" {
		if _, ok := entity.SortColumn(sort); !ok {
			problems["sort"] = "must be one of " + strings.Join(sortableFields(), ", ")
		}
	}

	desc := false
	switch strings.ToLower(strings.TrimSpace(q.Direction)) {
	case "":
		desc = sort == ""
	case "asc":
	case "desc":
		desc = true
	default:
		problems["direction"] = "must be asc or desc"
	}

	trashed := q.Trashed
	if trashed == "" {
		trashed = repo.WithoutTrashed
	}
	if len(problems) > 0 {
		return repo.Query{}, errorbank.Invalid(problems)
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	perPage := q.PerPage
	if perPage <= 0 {
		perPage = cfg.DefaultPerPage
	}
	if cfg.MaxPerPage > 0 && perPage > cfg.MaxPerPage {
		perPage = cfg.MaxPerPage
	}

	return repo.Query{
		Trashed: trashed,
		Search:  strings.TrimSpace(q.Search),
		SortBy:  sort,
		Desc:    desc,
		Page:    page,
		PerPage: perPage,
	}, nil
}

func sortableFields() []string {
	var names []string
	for _, f := range entity.TransactionSchema {
		if f.Sortable {
			names = append(names, f.Name)
		}
	}
	return names
}
