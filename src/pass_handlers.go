package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path"
	"time"

	"pms/src/lib"
	"pms/src/types"
	"pms/src/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/yeqown/go-qrcode"
)

func passHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/pass-types", func(ctx *gin.Context) {
			passTypes, err := utils.ListPassTypes()
			if err != nil {
				log.Printf("Error retrieving pass types: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": passTypes})
		}).
		GET("/passes", func(ctx *gin.Context) {
			var query types.ListPassesQueryParams
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			passes, total, err := utils.ListPasses(&query)
			if err != nil {
				log.Printf("Error retrieving Passes: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": passes, "total": total})
		}).
		GET("/passes/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			pass, err := utils.GetPass(params.ID)
			if err != nil {
				transactionError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": pass})
		}).
		POST("/passes/:id/close", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.ClosePassRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			operatorId := ctx.GetUint("id")
			if err := utils.ClosePass(params.ID, operatorId, body.Reason); err != nil {
				if errors.Is(err, types.ErrAlreadyClosed) {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
				transactionError(ctx, err)
				return
			}
			ctx.Status(http.StatusOK)
		}).
		POST("/passes/:id/download/code", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			pass, err := utils.GetPass(params.ID)
			if err != nil {
				transactionError(ctx, err)
				return
			}
			filename := fmt.Sprintf("passcode_%d", pass.ID)
			log.Printf("Download pass code for %s\n", filename)

			rd := lib.GetRedisClient()
			var cached string
			if rd != nil {
				cached, err = rd.Get(context.Background(), filename).Result()
				if err != nil && !errors.Is(err, redis.Nil) {
					log.Printf("Error reading from cache: %s\n", err.Error())
					ctx.Status(http.StatusBadRequest)
					return
				}
			}
			if cached != "" {
				ctx.FileAttachment(cached, "passcode.jpeg")
				return
			}

			rawData := map[string]any{
				"passId": pass.ID,
				"uid":    pass.UniqueID,
			}
			rawBytes, _ := json.Marshal(rawData)
			qrc, err := qrcode.New(string(rawBytes))
			if err != nil {
				log.Printf("Error generating code: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			wd, err := os.Getwd()
			if err != nil {
				log.Printf("Could not read working directory: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			tempdir := os.Getenv("TEMP_DIR")
			filepath := path.Join(wd, "..", tempdir, fmt.Sprintf("%s.jpeg", filename))
			if err := qrc.Save(filepath); err != nil {
				log.Printf("Could not save qrcode to file [%s]: %s\n", filepath, err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			if rd != nil {
				rd.SetEx(context.Background(), filename, filepath, 2*time.Hour)
			}
			ctx.FileAttachment(filepath, "passcode.jpeg")
		})
	return g
}
