package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/osei222/schoolfees/core"
	"github.com/osei222/schoolfees/core/comms"
	"github.com/osei222/schoolfees/core/fee"
	"github.com/osei222/schoolfees/core/student"
)

type paymentDeps struct {
	feeSvc     *fee.Service
	studentSvc *student.Service
	commsSvc   *comms.Service
	logger     core.Logger
	schoolName string
	validate   *validator.Validate
}

type paymentApi struct {
	paymentDeps
}

func registerPaymentAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps paymentDeps) {
	api := paymentApi{paymentDeps: deps}

	pg := g.Group("/payments", jwt)
	pg.POST("", api.create)
	pg.GET("", api.query)
	pg.GET("/:id", api.retrieve)
}

type newPaymentRequest struct {
	fee.NewPayment
	// SendReceipt queues a confirmation SMS to the student's parent once the
	// payment has been committed.
	SendReceipt bool `json:"send_receipt"`
}

type paymentQueryRequest struct {
	StudentID    int    `query:"student_id"`
	AcademicYear string `query:"academic_year"`
	Term         string `query:"term"`
	FeeType      string `query:"fee_type"`
	Method       string `query:"method"`
	Limit        int    `query:"limit"`
}

type PaymentResponse struct {
	Payment     fee.Payment `json:"payment"`
	Summary     fee.Summary `json:"summary"`
	ReceiptSent bool        `json:"receipt_sent"`
}

func (api *paymentApi) create(ctx echo.Context) error {
	var data newPaymentRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPayment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	rctx := ctx.Request().Context()
	stu, err := api.studentSvc.GetByID(rctx, data.StudentID)
	if err != nil {
		return errors.Wrap(err, "finding student for payment")
	}

	pmt, err := api.feeSvc.RecordPayment(rctx, stu.FeeContext(), data.NewPayment)
	if err != nil {
		return errors.Wrap(err, "recording payment")
	}

	sctx := stu.FeeContext()
	sctx.AcademicYear, sctx.Term = pmt.AcademicYear, pmt.Term
	sum, err := api.feeSvc.Summary(rctx, sctx)
	if err != nil {
		return errors.Wrap(err, "resolving summary after payment")
	}

	resp := PaymentResponse{Payment: pmt, Summary: sum}
	if data.SendReceipt && stu.ParentContact != "" {
		// The payment is already committed; a failed SMS must not fail it.
		if _, err = api.commsSvc.SendReceipt(rctx, comms.Receipt{
			SchoolName:  api.schoolName,
			StudentName: stu.Name,
			Class:       stu.Class,
			Recipient:   stu.ParentContact,
			Payment:     pmt,
			Summary:     sum,
		}); err != nil {
			api.logger.Error("sending payment receipt SMS", err)
		} else {
			resp.ReceiptSent = true
		}
	}
	return ctx.JSON(http.StatusCreated, resp)
}

func (api *paymentApi) query(ctx echo.Context) error {
	var query paymentQueryRequest
	if err := ctx.Bind(&query); err != nil {
		return ctx.JSON(http.StatusOK, []fee.Payment{})
	}
	payments, err := api.feeSvc.FilterPayments(ctx.Request().Context(), fee.QueryFilter{
		StudentID:    query.StudentID,
		AcademicYear: query.AcademicYear,
		Term:         query.Term,
		FeeType:      query.FeeType,
		Method:       query.Method,
		Limit:        query.Limit,
	})
	if err != nil {
		return errors.Wrap(err, "querying payments")
	}
	if payments == nil {
		payments = []fee.Payment{}
	}
	return ctx.JSON(http.StatusOK, payments)
}

func (api *paymentApi) retrieve(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}
	pmt, err := api.feeSvc.GetPayment(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "finding payment by ID")
	}
	return ctx.JSON(http.StatusOK, pmt)
}
