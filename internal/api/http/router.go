package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"library-service-backend/internal/security"
	"library-service-backend/internal/service"
)

// NewRouter wires all HTTP routes. The webhook endpoint stays outside the
// auth middleware: the processor authenticates by signature, not by token.
func NewRouter(
	tokens security.TokenManager,
	authSvc service.AuthService,
	userSvc service.UserService,
	bookSvc service.BookService,
	borrowingSvc service.BorrowingService,
	paymentSvc service.PaymentService,
) *mux.Router {
	r := mux.NewRouter()
	r.Use(AuthMiddleware(tokens))

	authHandler := NewAuthHandler(authSvc)
	r.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)
	r.HandleFunc("/auth/refresh", authHandler.Refresh).Methods(http.MethodPost)

	userHandler := NewUserHandler(userSvc)
	r.HandleFunc("/users/me", userHandler.Me).Methods(http.MethodGet)
	r.HandleFunc("/users/me", userHandler.UpdateMe).Methods(http.MethodPut)

	bookHandler := NewBookHandler(bookSvc)
	r.HandleFunc("/books", bookHandler.List).Methods(http.MethodGet)
	r.HandleFunc("/books", bookHandler.Create).Methods(http.MethodPost)
	r.HandleFunc("/books/{id:[0-9]+}", bookHandler.Get).Methods(http.MethodGet)
	r.HandleFunc("/books/{id:[0-9]+}", bookHandler.Update).Methods(http.MethodPut)
	r.HandleFunc("/books/{id:[0-9]+}", bookHandler.Delete).Methods(http.MethodDelete)

	borrowingHandler := NewBorrowingHandler(borrowingSvc)
	r.HandleFunc("/borrowings", borrowingHandler.List).Methods(http.MethodGet)
	r.HandleFunc("/borrowings", borrowingHandler.Create).Methods(http.MethodPost)
	r.HandleFunc("/borrowings/{id:[0-9]+}", borrowingHandler.Get).Methods(http.MethodGet)
	r.HandleFunc("/borrowings/{id:[0-9]+}", borrowingHandler.Delete).Methods(http.MethodDelete)
	r.HandleFunc("/borrowings/{id:[0-9]+}/return", borrowingHandler.Return).Methods(http.MethodPost)

	paymentHandler := NewPaymentHandler(paymentSvc)
	r.HandleFunc("/borrowings/{id:[0-9]+}/payment", paymentHandler.OpenPayment).Methods(http.MethodPost)
	r.HandleFunc("/payments", paymentHandler.List).Methods(http.MethodGet)
	r.HandleFunc("/payments/{id:[0-9]+}", paymentHandler.Get).Methods(http.MethodGet)
	r.HandleFunc("/payments/{id:[0-9]+}/status", paymentHandler.CheckStatus).Methods(http.MethodGet)
	r.HandleFunc("/payments/{id:[0-9]+}/renew", paymentHandler.Renew).Methods(http.MethodPost)
	r.HandleFunc("/payments/{id:[0-9]+}/success", paymentHandler.Success).Methods(http.MethodGet)
	r.HandleFunc("/payments/{id:[0-9]+}/cancel", paymentHandler.Cancel).Methods(http.MethodGet)

	r.HandleFunc("/webhooks/checkout", paymentHandler.Webhook).Methods(http.MethodPost)

	return r
}
