package router

import (
	"time"

	"github.com/jrrjunior25/PDV-master-sub000/internal/config"
	"github.com/jrrjunior25/PDV-master-sub000/internal/handler"
	"github.com/jrrjunior25/PDV-master-sub000/internal/infra"
	"github.com/jrrjunior25/PDV-master-sub000/internal/keymutex"
	"github.com/jrrjunior25/PDV-master-sub000/internal/middleware"
	"github.com/jrrjunior25/PDV-master-sub000/internal/repository"
	"github.com/jrrjunior25/PDV-master-sub000/internal/service"
	"github.com/jrrjunior25/PDV-master-sub000/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, sefazCB *infra.CircuitBreaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Infrastructure ───────────────────────────────────────────────────────
	sefazClient := infra.NewSefazClient(cfg.SefazURLHomologacao, cfg.SefazURLProducao)
	locks := keymutex.New()

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	produtoRepo := repository.NewProdutoRepository(db)
	vendaRepo := repository.NewVendaRepository(db)
	caixaRepo := repository.NewCaixaRepository(db)
	movimentoRepo := repository.NewMovimentoEstoqueRepository(db)
	financeiroRepo := repository.NewFinanceiroRepository(db)
	clienteRepo := repository.NewClienteRepository(db)
	configRepo := repository.NewConfiguracaoRepository(db)
	notaRepo := repository.NewNotaFiscalRepository(db)
	backupRepo := repository.NewBackupRepository(db)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	produtoSvc := service.NewProdutoService(produtoRepo, rdb)
	clienteSvc := service.NewClienteService(clienteRepo)
	caixaSvc := service.NewCaixaService(caixaRepo, vendaRepo, financeiroRepo, locks)
	estoqueSvc := service.NewEstoqueService(produtoRepo, movimentoRepo, financeiroRepo, locks)
	vendaSvc := service.NewVendaService(vendaRepo, produtoRepo, clienteRepo, configRepo,
		notaRepo, financeiroRepo, caixaSvc, estoqueSvc, sefazClient, dispatcher, locks,
		cfg.FiscalBloqueiaRejeicao)
	fiscalSvc := service.NewFiscalService(notaRepo, configRepo, dispatcher)
	backupSvc := service.NewBackupService(backupRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	produtosH := handler.NewProdutosHandler(produtoSvc)
	clientesH := handler.NewClientesHandler(clienteSvc)
	vendasH := handler.NewVendasHandler(vendaSvc)
	caixaH := handler.NewCaixaHandler(caixaSvc)
	estoqueH := handler.NewEstoqueHandler(estoqueSvc)
	fiscalH := handler.NewFiscalHandler(fiscalSvc)
	backupH := handler.NewBackupHandler(backupSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, sefazCB))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Terminal de consulta de preço — sem autenticação
	r.GET("/v1/consulta-preco/:codigo", produtosH.ConsultarPreco)

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		operadores := middleware.RequirePerfil("operador", "supervisor", "administrador")
		supervisores := middleware.RequirePerfil("supervisor", "administrador")
		admins := middleware.RequirePerfil("administrador")

		v1.POST("/vendas", operadores, vendasH.RegistrarVenda)
		v1.GET("/vendas", operadores, vendasH.ListarVendas)
		v1.GET("/vendas/:id", operadores, vendasH.ObterVenda)
		v1.GET("/vendas/:id/nota", operadores, fiscalH.NotaPorVenda)

		caixa := v1.Group("/caixa")
		{
			caixa.POST("/abrir", operadores, caixaH.Abrir)
			caixa.POST("/fechar", operadores, caixaH.Fechar)
			caixa.POST("/movimento", operadores, caixaH.Movimento)
			caixa.GET("/atual", operadores, caixaH.SessaoAtual)
			caixa.GET("/sessoes", supervisores, caixaH.ListarSessoes)
			caixa.GET("/sessoes/:id", supervisores, caixaH.ObterSessao)
		}

		v1.GET("/produtos", operadores, produtosH.Listar)
		v1.GET("/produtos/:id", operadores, produtosH.Obter)
		v1.GET("/produtos/codigo/:codigo", operadores, produtosH.ObterPorCodigo)
		v1.POST("/produtos/:id/ajuste", supervisores, estoqueH.Ajustar)
		prods := v1.Group("/produtos", admins)
		{
			prods.POST("", produtosH.Criar)
			prods.PUT("/:id", produtosH.Atualizar)
			prods.DELETE("/:id", produtosH.Desativar)
		}

		estoque := v1.Group("/estoque", supervisores)
		{
			estoque.GET("/movimentos", estoqueH.Historico)
			estoque.POST("/entrada", estoqueH.ConfirmarEntrada)
		}

		v1.GET("/clientes", operadores, clientesH.Listar)
		v1.GET("/clientes/:id", operadores, clientesH.Obter)
		v1.POST("/clientes", operadores, clientesH.Criar)
		v1.PUT("/clientes/:id", operadores, clientesH.Atualizar)

		fiscal := v1.Group("", supervisores)
		{
			fiscal.GET("/notas/:id", fiscalH.ObterNota)
			fiscal.POST("/notas/:id/retransmitir", fiscalH.Retransmitir)
		}
		v1.POST("/pix", operadores, fiscalH.GerarPix)

		backup := v1.Group("/backup", admins)
		{
			backup.GET("", backupH.Exportar)
			backup.POST("", backupH.Importar)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
