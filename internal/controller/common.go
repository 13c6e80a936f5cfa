package controller

import (
	"study_planner_backend/internal/planner"
	"study_planner_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// actorOf reads the authenticated caller, answering 401 when there is none.
func actorOf(ctx *gin.Context) (planner.Actor, bool) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return planner.Actor{}, false
	}
	return claims.Actor(), true
}
