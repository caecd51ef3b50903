package handler

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"campus-walkways/model"
	"campus-walkways/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Claims JWT 载荷
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Message  string `json:"message"`
}

// Auth 管理员账号与 Token 签发
// 账号只保存在内存里，启动时由配置中的管理员账号初始化
type Auth struct {
	secret []byte
	ttl    time.Duration

	mu        sync.RWMutex
	operators map[string]*model.Operator
}

// NewAuth 创建认证模块并写入初始管理员
func NewAuth(secret, adminUser, adminPassword string) (*Auth, error) {
	if secret == "" {
		return nil, errors.New("JWT 密钥不能为空")
	}
	a := &Auth{
		secret:    []byte(secret),
		ttl:       24 * time.Hour,
		operators: make(map[string]*model.Operator),
	}
	if adminUser != "" {
		if _, err := a.AddOperator(adminUser, adminPassword, ""); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// AddOperator 新增管理员，用户名已存在时返回 errOperatorExists
func (a *Auth) AddOperator(username, password, email string) (*model.Operator, error) {
	hashed, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, exists := a.operators[username]; exists {
		return nil, errOperatorExists
	}
	op := &model.Operator{Username: username, Password: hashed, Email: email}
	a.operators[username] = op
	return op, nil
}

var errOperatorExists = errors.New("用户名已存在")

// IssueToken 为管理员签发 Token
func (a *Auth) IssueToken(username string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "campus-walkways",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// Login 处理管理员登录
func (a *Auth) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求参数错误"})
		return
	}

	a.mu.RLock()
	op, exists := a.operators[req.Username]
	a.mu.RUnlock()
	if !exists || !utils.CheckPassword(op.Password, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "用户名或密码错误"})
		return
	}

	token, err := a.IssueToken(op.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "生成 Token 失败"})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:    token,
		Username: op.Username,
		Message:  "登录成功",
	})
}

// Register 已登录的管理员添加新管理员
func (a *Auth) Register(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required,min=6"`
		Email    string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求参数错误"})
		return
	}

	op, err := a.AddOperator(req.Username, req.Password, req.Email)
	if errors.Is(err, errOperatorExists) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "密码加密失败"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "注册成功",
		"username": op.Username,
	})
}

// Middleware JWT 认证中间件，保护所有编辑接口
func (a *Auth) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.GetHeader("Authorization")
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "未提供 Token"})
			return
		}
		tokenString = strings.TrimPrefix(tokenString, "Bearer ")

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			return a.secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "无效的 Token"})
			return
		}

		c.Set("username", claims.Username)
		c.Next()
	}
}
