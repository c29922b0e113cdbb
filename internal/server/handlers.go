package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/valpere/hrify/internal"
	"github.com/valpere/hrify/internal/detector"
	"github.com/valpere/hrify/internal/generator"
	"github.com/valpere/hrify/internal/i18n"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "status": "healthy"})
}

func (s *Server) handleDebugEnv(c *gin.Context) {
	loaded, mtime := s.prompts.Loaded()

	var mtimeValue any
	if loaded {
		mtimeValue = float64(mtime.UnixNano()) / 1e9
	}

	keyPresent := false
	provider, model := "", ""
	if s.generator != nil {
		keyPresent = s.generator.IsAvailable(c.Request.Context()) == nil
		provider = s.generator.Name()
		model = s.generator.Model()
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":                     true,
		"openai_api_key_present": keyPresent,
		"provider":               provider,
		"model":                  model,
		"prompts_path":           s.prompts.Path(),
		"prompts_loaded":         loaded,
		"prompts_mtime":          mtimeValue,
	})
}

func (s *Server) handleDebugPrompts(c *gin.Context) {
	set, err := s.prompts.Snapshot()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	summary := make(map[string][]string, len(set))
	for lang, mapping := range set {
		keys := make([]string, 0, len(mapping))
		for k := range mapping {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		summary[lang] = keys
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "languages": set.Languages(), "scenarios_by_lang": summary})
}

func (s *Server) handleProcess(c *gin.Context) {
	var body internal.ScenarioRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, internal.ScenarioResponse{Error: "Bad request"})
		return
	}

	start := s.now()
	text := strings.TrimSpace(body.Text)
	scenario := internal.Scenario(strings.TrimSpace(body.Scenario))
	uiLang := strings.ToLower(strings.TrimSpace(body.UILang))
	if uiLang == "" {
		uiLang = i18n.DefaultLang
	}
	ip := c.ClientIP()
	if ip == "" {
		ip = "anon"
	}

	rec := internal.ProcessRecord{
		Scenario:  scenario.String(),
		UILang:    uiLang,
		Text:      text,
		ClientIP:  ip,
		Timestamp: start,
	}
	ctx := c.Request.Context()

	fail := func(status int, msg string) {
		rec.Status = internal.StatusError
		rec.Error = msg
		s.record(ctx, rec, start)
		c.JSON(status, internal.ScenarioResponse{Error: msg})
	}

	allowed, err := s.limiter.Allow(ctx, ip)
	if err != nil {
		s.log.WithError(err).WithField("ip", ip).Warn("rate limiter unavailable, allowing request")
		allowed = true
	}
	if !allowed {
		fail(http.StatusTooManyRequests, i18n.Pick(uiLang,
			"Слишком много запросов. Попробуйте позже.",
			"Too many requests. Please try again later.",
			"Demasiadas solicitudes. Inténtalo más tarde."))
		return
	}

	if text == "" {
		fail(http.StatusBadRequest, i18n.Pick(uiLang, "Пустой текст.", "Empty text.", "Texto vacío."))
		return
	}
	if !scenario.Valid() {
		fail(http.StatusBadRequest, i18n.Pick(uiLang, "Неизвестный сценарий.", "Unknown scenario.", "Escenario desconocido."))
		return
	}
	if s.moderation.Contains(text) {
		fail(http.StatusBadRequest, i18n.Pick(uiLang,
			"Обнаружены запрещённые слова.",
			"Banned words detected.",
			"Se detectaron palabras prohibidas."))
		return
	}

	lang := detector.PickLang(s.detector.DetectInput(text), uiLang)
	rec.PromptLang = lang

	systemPrompt, err := s.prompts.Get(lang, scenario)
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"lang": lang, "scenario": scenario}).Error("prompt lookup failed")
		fail(http.StatusInternalServerError, i18n.Pick(uiLang,
			"Ошибка загрузки промптов. Проверь prompts.json.",
			"Prompts loading error. Check prompts.json.",
			"Error al cargar los prompts. Revisa prompts.json."))
		return
	}

	if s.generator == nil || s.generator.IsAvailable(ctx) != nil {
		fail(http.StatusInternalServerError, notConfiguredMessage(uiLang))
		return
	}

	result, err := s.generator.Generate(ctx, systemPrompt, text)
	if err == nil {
		result = strings.TrimSpace(result)
		if result == "" {
			err = generator.ErrEmptyResponse
		}
	}
	if err != nil {
		status, msg := s.generationError(uiLang, err)
		s.log.WithError(err).WithFields(logrus.Fields{
			"provider": s.generator.Name(),
			"model":    s.generator.Model(),
			"kind":     generator.Classify(err).String(),
		}).Warn("generation failed")
		fail(status, msg)
		return
	}

	rec.Status = internal.StatusOK
	rec.Result = result
	s.record(ctx, rec, start)
	c.JSON(http.StatusOK, internal.ScenarioResponse{Result: result})
}

func notConfiguredMessage(uiLang string) string {
	return i18n.Pick(uiLang,
		"Ошибка: OPENAI_API_KEY не установлен.",
		"Error: OPENAI_API_KEY is not set.",
		"Error: OPENAI_API_KEY no está configurada.")
}

// generationError maps a provider failure to the HTTP status and localised
// message returned to the client. Go error text is never exposed.
func (s *Server) generationError(uiLang string, err error) (int, string) {
	if errors.Is(err, generator.ErrNotConfigured) {
		return http.StatusInternalServerError, notConfiguredMessage(uiLang)
	}

	model := s.generator.Model()
	switch generator.Classify(err) {
	case generator.KindAuth:
		return http.StatusInternalServerError, i18n.Pick(uiLang,
			"Неверный или отозванный OPENAI_API_KEY.",
			"Invalid or revoked OPENAI_API_KEY.",
			"OPENAI_API_KEY inválida o revocada.")
	case generator.KindRateLimit:
		return http.StatusBadGateway, i18n.Pick(uiLang,
			"Достигнут лимит на стороне OpenAI. Попробуйте позже.",
			"OpenAI rate limit reached. Please try again later.",
			"Se alcanzó el límite de OpenAI. Inténtalo más tarde.")
	case generator.KindModelUnavailable:
		return http.StatusInternalServerError, i18n.Pick(uiLang,
			fmt.Sprintf("Модель '%s' недоступна. Укажи существующую модель в OPENAI_MODEL.", model),
			fmt.Sprintf("Model '%s' is unavailable. Set an existing model in OPENAI_MODEL.", model),
			fmt.Sprintf("El modelo '%s' no está disponible. Configura un modelo existente en OPENAI_MODEL.", model))
	case generator.KindTimeout:
		return http.StatusGatewayTimeout, i18n.Pick(uiLang,
			"Таймаут запроса к OpenAI. Повтори попытку.",
			"Request to OpenAI timed out. Please retry.",
			"La solicitud a OpenAI agotó el tiempo. Inténtalo de nuevo.")
	default:
		return http.StatusInternalServerError, i18n.Pick(uiLang,
			"Ошибка генерации ответа. Проверь ключ, модель и логи (/debug/env).",
			"Generation failed. Check API key, model and logs (/debug/env).",
			"Error al generar la respuesta. Revisa la clave, el modelo y los registros (/debug/env).")
	}
}

// record writes the audit row. Failures are logged and never reach the client.
func (s *Server) record(ctx context.Context, rec internal.ProcessRecord, start time.Time) {
	if s.recorder == nil {
		return
	}
	rec.LatencyMs = s.now().Sub(start).Milliseconds()
	if _, err := s.recorder.SaveRequest(ctx, rec); err != nil {
		s.log.WithError(err).Warn("failed to record request")
	}
}
