package apiConverter

import (
	"github.com/akraev/folioterm/internal/model"
	"github.com/akraev/folioterm/internal/model/apiModel"
)

func ConvertAuthResponse(resp apiModel.AuthResponse) model.Session {
	return model.Session{
		Token: resp.Token,
		Identity: &model.Identity{
			ID:       resp.User.ID,
			Email:    resp.User.Email,
			FullName: resp.User.FullName,
		},
	}
}

func ConvertPortfolios(apiPortfolios []apiModel.Portfolio) []model.Portfolio {
	portfolios := make([]model.Portfolio, 0, len(apiPortfolios))
	for _, p := range apiPortfolios {
		portfolios = append(portfolios, model.Portfolio{
			ID:     p.ID,
			UserID: p.UserID,
			Name:   p.Name,
		})
	}
	return portfolios
}

func ConvertHolding(h apiModel.Holding) model.Holding {
	return model.Holding{
		ID:          h.ID,
		PortfolioID: h.PortfolioID,
		SecurityID:  h.SecurityID,
		TotalShares: h.TotalShares,
		AverageCost: h.AverageCost,
		Security: model.Security{
			ID:           h.Security.ID,
			Symbol:       h.Security.Symbol,
			Name:         h.Security.Name,
			CurrentPrice: h.Security.CurrentPrice,
		},
	}
}

func ConvertHoldings(apiHoldings []apiModel.Holding) []model.Holding {
	holdings := make([]model.Holding, 0, len(apiHoldings))
	for _, h := range apiHoldings {
		holdings = append(holdings, ConvertHolding(h))
	}
	return holdings
}

func ConvertTransaction(t apiModel.Transaction) model.Transaction {
	return model.Transaction{
		ID:          t.ID,
		PortfolioID: t.PortfolioID,
		SecurityID:  t.SecurityID,
		Type:        t.Type,
		Shares:      t.Shares,
		Price:       t.Price,
		ExecutedAt:  t.ExecutedAt,
	}
}
