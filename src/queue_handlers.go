package main

import (
	"errors"
	"log"
	"net/http"

	"pms/src/types"
	"pms/src/utils"

	"github.com/gin-gonic/gin"
)

func queueHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/queue/tokens", func(ctx *gin.Context) {
			var query types.IssueTokenQueryParams
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ownerId := ctx.GetUint("id")
			ticket, err := utils.IssueQueueToken(ownerId, query.Type)
			if err != nil {
				var dup *types.DuplicateActiveTokenError
				if errors.As(err, &dup) {
					ctx.JSON(http.StatusConflict, gin.H{"error": dup.Error(), "code": dup.Code})
					return
				}
				log.Printf("Error issuing queue token: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": ticket})
		}).
		GET("/queue/tokens", func(ctx *gin.Context) {
			var query types.ListTokensQueryParams
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			tickets, total, err := utils.ListOpenTokens(query.Page, query.PageSize)
			if err != nil {
				log.Printf("Error retrieving queue tokens: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": tickets, "total": total})
		}).
		POST("/queue/tokens/close", func(ctx *gin.Context) {
			var body types.CloseTokenRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ownerId := ctx.GetUint("id")
			if err := utils.CloseQueueToken(body.Code, ownerId); err != nil {
				if errors.Is(err, types.ErrTokenNotFound) {
					ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
					return
				}
				log.Printf("Error closing queue token [%s]: %s\n", body.Code, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusOK)
		})
	return g
}
