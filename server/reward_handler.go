package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	errs "github.com/greenearthng/greenloop/errors"
	"github.com/greenearthng/greenloop/server/response"
)

func (s *Server) handleGetUserRewardBalance() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDFromContext(c)
		if !ok {
			respondAndAbort(c, "", http.StatusUnauthorized, nil, errs.ErrUnauthorized)
			return
		}

		balance, err := s.RewardService.ComputeBalance(userID)
		if err != nil {
			response.JSON(c, "", http.StatusInternalServerError, nil, errs.ErrInternalServerError)
			return
		}
		response.JSON(c, "balance retrieved successfully", http.StatusOK, gin.H{"balance": balance}, nil)
	}
}

func (s *Server) handleGetTransactions() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDFromContext(c)
		if !ok {
			respondAndAbort(c, "", http.StatusUnauthorized, nil, errs.ErrUnauthorized)
			return
		}

		limit := queryLimit(c, 10)
		transactions, err := s.RewardService.ListTransactions(userID, limit)
		if err != nil {
			response.JSON(c, "", http.StatusInternalServerError, nil, errs.ErrInternalServerError)
			return
		}
		response.JSON(c, "transactions retrieved successfully", http.StatusOK, transactions, nil)
	}
}

func (s *Server) handleGetAvailableRewards() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDFromContext(c)
		if !ok {
			respondAndAbort(c, "", http.StatusUnauthorized, nil, errs.ErrUnauthorized)
			return
		}

		rewards, err := s.RewardService.ListAvailableRewards(userID)
		if err != nil {
			response.JSON(c, "", http.StatusInternalServerError, nil, errs.ErrInternalServerError)
			return
		}
		response.JSON(c, "rewards retrieved successfully", http.StatusOK, rewards, nil)
	}
}

func (s *Server) handleRedeemReward() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDFromContext(c)
		if !ok {
			respondAndAbort(c, "", http.StatusUnauthorized, nil, errs.ErrUnauthorized)
			return
		}

		rewardID, err := strconv.ParseUint(c.Param("rewardID"), 10, 32)
		if err != nil {
			response.JSON(c, "invalid reward id", http.StatusBadRequest, nil, errs.ErrBadRequest)
			return
		}

		transaction, err := s.RewardService.RedeemReward(userID, uint(rewardID))
		if err != nil {
			if apiErr, ok := err.(*errs.Error); ok {
				response.JSON(c, "", apiErr.Status, nil, apiErr)
				return
			}
			response.JSON(c, "", http.StatusInternalServerError, nil, errs.ErrInternalServerError)
			return
		}
		response.JSON(c, "reward redeemed successfully", http.StatusOK, transaction, nil)
	}
}

func (s *Server) handleLeaderboard() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := queryLimit(c, 10)
		entries, err := s.RewardService.Leaderboard(limit)
		if err != nil {
			response.JSON(c, "", http.StatusInternalServerError, nil, errs.ErrInternalServerError)
			return
		}
		response.JSON(c, "leaderboard retrieved successfully", http.StatusOK, entries, nil)
	}
}
