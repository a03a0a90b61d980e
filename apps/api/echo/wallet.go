package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/osei222/schoolfees/core/user"
	"github.com/osei222/schoolfees/core/wallet"
)

type walletApi struct {
	svc      *wallet.Service
	validate *validator.Validate
}

func registerWalletAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *wallet.Service, validate *validator.Validate) {
	api := walletApi{svc: svc, validate: validate}

	wg := g.Group("/wallet", jwt)
	wg.GET("", api.account)
	wg.GET("/transactions", api.transactions)
	wg.POST("/topup", api.topUp, adminMiddleware(user.RoleAdminOwner))
	wg.POST("/sms-purchase", api.purchaseSMS, adminMiddleware())
}

type walletTransactionsRequest struct {
	Limit int `query:"limit"`
}

type WalletOperationResponse struct {
	Account     wallet.Account     `json:"account"`
	Transaction wallet.Transaction `json:"transaction"`
}

func (api *walletApi) account(ctx echo.Context) error {
	acc, err := api.svc.Account(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "loading wallet account")
	}
	return ctx.JSON(http.StatusOK, acc)
}

func (api *walletApi) transactions(ctx echo.Context) error {
	var query walletTransactionsRequest
	_ = ctx.Bind(&query)
	txns, err := api.svc.Transactions(ctx.Request().Context(), query.Limit)
	if err != nil {
		return errors.Wrap(err, "querying wallet transactions")
	}
	if txns == nil {
		txns = []wallet.Transaction{}
	}
	return ctx.JSON(http.StatusOK, txns)
}

func (api *walletApi) topUp(ctx echo.Context) error {
	var data wallet.NewTopUp
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTopUp")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	acc, txn, err := api.svc.TopUp(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "topping up wallet")
	}
	return ctx.JSON(http.StatusCreated, WalletOperationResponse{Account: acc, Transaction: txn})
}

func (api *walletApi) purchaseSMS(ctx echo.Context) error {
	var data wallet.NewPurchase
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPurchase")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	acc, txn, err := api.svc.PurchaseSMS(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "purchasing SMS units")
	}
	return ctx.JSON(http.StatusCreated, WalletOperationResponse{Account: acc, Transaction: txn})
}
