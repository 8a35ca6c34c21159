package common

import (
	"bibgraph-backend/logging"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"net/http"
	"time"
)

const (
	RequestContextKeyUser = "user"

	HeaderUserEmail = "X-User-Email"
	HeaderUserName  = "X-User-Name"
)

// UserInfo 由上游网关通过请求头传入。
type UserInfo struct {
	Name  string
	Email string
}

var debugUser = UserInfo{
	Name:  "debug",
	Email: "",
}

func LogRequest(ctx *gin.Context) {
	begin := time.Now()
	ctx.Next()

	logging.Default().WithFields(logrus.Fields{
		"method":  ctx.Request.Method,
		"path":    ctx.Request.URL.Path,
		"status":  ctx.Writer.Status(),
		"latency": time.Since(begin).String(),
		"client":  ctx.ClientIP(),
	}).Info("request")
}

/*
SetUserInfo 从请求头读取用户信息放入上下文。debug 模式下没有用户信息的请求使用调试用户。
*/
func SetUserInfo(debug bool) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		email := ctx.GetHeader(HeaderUserEmail)
		name := ctx.GetHeader(HeaderUserName)

		if len(email) != 0 || len(name) != 0 {
			ctx.Set(RequestContextKeyUser, &UserInfo{Name: name, Email: email})
		} else if debug {
			user := debugUser
			ctx.Set(RequestContextKeyUser, &user)
		}

		ctx.Next()
	}
}

func RejectNotLogin(debug bool) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if debug {
			ctx.Next()
			return
		}

		if _, exist := ctx.Get(RequestContextKeyUser); !exist {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, MakeNotLoginResp())
			return
		}

		ctx.Next()
	}
}

// GetUserInfo 返回 SetUserInfo 放入的用户，没有时返回 nil。
func GetUserInfo(ctx *gin.Context) *UserInfo {
	user, exist := ctx.Get(RequestContextKeyUser)
	if !exist {
		return nil
	}

	userInfo, ok := user.(*UserInfo)
	if !ok {
		logging.Default().Errorf("ctx.Get(%s) get [%#v] not (*common.UserInfo)", RequestContextKeyUser, user)
		return nil
	}
	return userInfo
}
