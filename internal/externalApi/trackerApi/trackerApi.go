package trackerApi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/akraev/folioterm/config"
	"github.com/akraev/folioterm/internal/converter/apiConverter"
	"github.com/akraev/folioterm/internal/externalApi"
	"github.com/akraev/folioterm/internal/model"
	"github.com/akraev/folioterm/internal/model/apiModel"
	"github.com/akraev/folioterm/utils"
	"github.com/go-resty/resty/v2"
)

type TrackerApi struct {
	client *resty.Client
}

func New(cfg *config.Config) *TrackerApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.Url).
		SetHeader("Accept", "application/json")
	return &TrackerApi{client: client}
}

// SetAuthToken attaches the bearer credential to every subsequent request.
// Called by the session service on login, register and restore.
func (a *TrackerApi) SetAuthToken(token string) {
	a.client.SetAuthToken(token)
}

func (a *TrackerApi) ClearAuthToken() {
	a.client.SetAuthToken("")
}

func (a *TrackerApi) Login(ctx context.Context, email, password string) (model.Session, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TrackerApi.Login"

	slog.Debug("Login request start", slog.String("rqID", rqID), slog.String("op", op))

	resp, err := a.client.R().
		SetContext(ctx).
		SetBody(apiModel.LoginRequest{Email: email, Password: password}).
		Post("/auth/login")
	if err != nil {
		slog.Error("error while dialing tracker api", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Session{}, err
	}

	if err := a.checkResponse(resp); err != nil {
		slog.Error("Login rejected", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Session{}, err
	}

	authResp := apiModel.AuthResponse{}
	if err := json.Unmarshal(resp.Body(), &authResp); err != nil {
		slog.Error("can't unmarshal auth response", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Session{}, err
	}

	slog.Debug("Login request complete", slog.String("rqID", rqID), slog.String("op", op))

	return apiConverter.ConvertAuthResponse(authResp), nil
}

func (a *TrackerApi) Register(ctx context.Context, email, password, fullName string) (model.Session, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TrackerApi.Register"

	slog.Debug("Register request start", slog.String("rqID", rqID), slog.String("op", op))

	resp, err := a.client.R().
		SetContext(ctx).
		SetBody(apiModel.RegisterRequest{Email: email, Password: password, FullName: fullName}).
		Post("/auth/register")
	if err != nil {
		slog.Error("error while dialing tracker api", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Session{}, err
	}

	if err := a.checkResponse(resp); err != nil {
		slog.Error("Register rejected", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Session{}, err
	}

	authResp := apiModel.AuthResponse{}
	if err := json.Unmarshal(resp.Body(), &authResp); err != nil {
		slog.Error("can't unmarshal auth response", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Session{}, err
	}

	slog.Debug("Register request complete", slog.String("rqID", rqID), slog.String("op", op))

	return apiConverter.ConvertAuthResponse(authResp), nil
}

func (a *TrackerApi) Logout(ctx context.Context) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TrackerApi.Logout"

	slog.Debug("Logout request start", slog.String("rqID", rqID), slog.String("op", op))

	resp, err := a.client.R().
		SetContext(ctx).
		Post("/auth/logout")
	if err != nil {
		return err
	}

	if err := a.checkResponse(resp); err != nil {
		return err
	}

	slog.Debug("Logout request complete", slog.String("rqID", rqID), slog.String("op", op))

	return nil
}

func (a *TrackerApi) ListPortfolios(ctx context.Context, userID int64) ([]model.Portfolio, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TrackerApi.ListPortfolios"

	slog.Debug("ListPortfolios request start", slog.String("rqID", rqID), slog.String("op", op))

	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParam("userId", strconv.FormatInt(userID, 10)).
		Get("/portfolios")
	if err != nil {
		slog.Error("error while dialing tracker api", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	if err := a.checkResponse(resp); err != nil {
		slog.Error("ListPortfolios failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	apiPortfolios := []apiModel.Portfolio{}
	if err := json.Unmarshal(resp.Body(), &apiPortfolios); err != nil {
		slog.Error("can't unmarshal portfolios response", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	slog.Debug("ListPortfolios request complete", slog.String("rqID", rqID), slog.String("op", op))

	return apiConverter.ConvertPortfolios(apiPortfolios), nil
}

func (a *TrackerApi) ListHoldings(ctx context.Context, portfolioID, userID int64) ([]model.Holding, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TrackerApi.ListHoldings"

	slog.Debug("ListHoldings request start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID))

	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParam("userId", strconv.FormatInt(userID, 10)).
		Get("/portfolios/" + strconv.FormatInt(portfolioID, 10) + "/holdings")
	if err != nil {
		slog.Error("error while dialing tracker api", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	if err := a.checkResponse(resp); err != nil {
		slog.Error("ListHoldings failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	apiHoldings := []apiModel.Holding{}
	if err := json.Unmarshal(resp.Body(), &apiHoldings); err != nil {
		slog.Error("can't unmarshal holdings response", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	slog.Debug("ListHoldings request complete", slog.String("rqID", rqID), slog.String("op", op))

	return apiConverter.ConvertHoldings(apiHoldings), nil
}

func (a *TrackerApi) CreateHolding(ctx context.Context, req apiModel.HoldingRequest) (model.Holding, error) {
	return a.sendHolding(ctx, "TrackerApi.CreateHolding", http.MethodPost, "/holdings", req)
}

func (a *TrackerApi) UpdateHolding(ctx context.Context, holdingID int64, req apiModel.HoldingRequest) (model.Holding, error) {
	return a.sendHolding(ctx, "TrackerApi.UpdateHolding", http.MethodPut, "/holdings/"+strconv.FormatInt(holdingID, 10), req)
}

func (a *TrackerApi) DeleteHolding(ctx context.Context, holdingID int64) error {
	return a.sendDelete(ctx, "TrackerApi.DeleteHolding", "/holdings/"+strconv.FormatInt(holdingID, 10))
}

func (a *TrackerApi) CreateTransaction(ctx context.Context, req apiModel.TransactionRequest) (model.Transaction, error) {
	return a.sendTransaction(ctx, "TrackerApi.CreateTransaction", http.MethodPost, "/transactions", req)
}

func (a *TrackerApi) UpdateTransaction(ctx context.Context, transactionID int64, req apiModel.TransactionRequest) (model.Transaction, error) {
	return a.sendTransaction(ctx, "TrackerApi.UpdateTransaction", http.MethodPut, "/transactions/"+strconv.FormatInt(transactionID, 10), req)
}

func (a *TrackerApi) DeleteTransaction(ctx context.Context, transactionID int64) error {
	return a.sendDelete(ctx, "TrackerApi.DeleteTransaction", "/transactions/"+strconv.FormatInt(transactionID, 10))
}

func (a *TrackerApi) sendHolding(ctx context.Context, op, method, url string, req apiModel.HoldingRequest) (model.Holding, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	slog.Debug("request start", slog.String("rqID", rqID), slog.String("op", op))

	resp, err := a.client.R().
		SetContext(ctx).
		SetBody(req).
		Execute(method, url)
	if err != nil {
		slog.Error("error while dialing tracker api", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Holding{}, err
	}

	if err := a.checkResponse(resp); err != nil {
		slog.Error("holding mutation failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Holding{}, err
	}

	apiHolding := apiModel.Holding{}
	if err := json.Unmarshal(resp.Body(), &apiHolding); err != nil {
		slog.Error("can't unmarshal holding response", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Holding{}, err
	}

	slog.Debug("request complete", slog.String("rqID", rqID), slog.String("op", op))

	return apiConverter.ConvertHolding(apiHolding), nil
}

func (a *TrackerApi) sendTransaction(ctx context.Context, op, method, url string, req apiModel.TransactionRequest) (model.Transaction, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	slog.Debug("request start", slog.String("rqID", rqID), slog.String("op", op))

	resp, err := a.client.R().
		SetContext(ctx).
		SetBody(req).
		Execute(method, url)
	if err != nil {
		slog.Error("error while dialing tracker api", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Transaction{}, err
	}

	if err := a.checkResponse(resp); err != nil {
		slog.Error("transaction mutation failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Transaction{}, err
	}

	apiTransaction := apiModel.Transaction{}
	if err := json.Unmarshal(resp.Body(), &apiTransaction); err != nil {
		slog.Error("can't unmarshal transaction response", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Transaction{}, err
	}

	slog.Debug("request complete", slog.String("rqID", rqID), slog.String("op", op))

	return apiConverter.ConvertTransaction(apiTransaction), nil
}

func (a *TrackerApi) sendDelete(ctx context.Context, op, url string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)

	slog.Debug("request start", slog.String("rqID", rqID), slog.String("op", op))

	resp, err := a.client.R().
		SetContext(ctx).
		Delete(url)
	if err != nil {
		slog.Error("error while dialing tracker api", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	if err := a.checkResponse(resp); err != nil {
		slog.Error("delete failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("request complete", slog.String("rqID", rqID), slog.String("op", op))

	return nil
}

func (a *TrackerApi) checkResponse(resp *resty.Response) error {
	switch {
	case resp.IsSuccess():
		return nil
	case resp.StatusCode() == http.StatusUnauthorized:
		return externalApi.ErrUnauthorized
	case resp.StatusCode() == http.StatusNotFound:
		return externalApi.ErrNotFound
	}

	apiErr := apiModel.ErrorResponse{}
	_ = json.Unmarshal(resp.Body(), &apiErr)

	return &externalApi.APIError{StatusCode: resp.StatusCode(), Message: apiErr.Message}
}
