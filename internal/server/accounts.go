package server

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"trade-journal-go/internal/ledger"
)

type accountRequest struct {
	Name           string          `json:"name" binding:"required"`
	Broker         string          `json:"broker" binding:"required"`
	AccountType    string          `json:"accountType"`
	Currency       string          `json:"currency"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
}

type accountPatchRequest struct {
	Name           *string          `json:"name"`
	Broker         *string          `json:"broker"`
	AccountType    *string          `json:"accountType"`
	Currency       *string          `json:"currency"`
	InitialBalance *decimal.Decimal `json:"initialBalance"`
}

func (s *Server) createAccount(c *gin.Context) {
	var req accountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	account, err := s.ledger.CreateAccount(c.Request.Context(), currentUser(c), ledger.CreateAccountInput{
		Name:           req.Name,
		Broker:         req.Broker,
		AccountType:    req.AccountType,
		Currency:       req.Currency,
		InitialBalance: req.InitialBalance,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, account)
}

func (s *Server) updateAccount(c *gin.Context) {
	var req accountPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	account, err := s.ledger.UpdateAccount(c.Request.Context(), currentUser(c), c.Param("id"), ledger.AccountPatch{
		Name:           req.Name,
		Broker:         req.Broker,
		AccountType:    req.AccountType,
		Currency:       req.Currency,
		InitialBalance: req.InitialBalance,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, account)
}

func (s *Server) deleteAccount(c *gin.Context) {
	if err := s.ledger.DeleteAccount(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{})
}

func (s *Server) getAccount(c *gin.Context) {
	account, err := s.ledger.GetAccount(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, account)
}

func (s *Server) listAccounts(c *gin.Context) {
	accounts, err := s.ledger.ListAccounts(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, accounts, len(accounts), int64(len(accounts)))
}
