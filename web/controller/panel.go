package controller

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"copycheck/database/model"
	"copycheck/logger"
	"copycheck/web/service"
	"copycheck/web/session"

	"github.com/gin-gonic/gin"
)

// GenerateForm carries one generation request.
type GenerateForm struct {
	Type           string   `json:"type" form:"type"`
	Topic          string   `json:"topic" form:"topic"`
	Length         string   `json:"length" form:"length"`
	AdditionalInfo string   `json:"additionalInfo" form:"additionalInfo"`
	Model          string   `json:"model" form:"model"`
	Temperature    *float64 `json:"temperature" form:"temperature"`
}

// PanelController serves the authenticated views and the JSON API for
// generation, proofreading and history.
type PanelController struct {
	BaseController

	historyService    service.HistoryService
	exportService     service.ExportService
	extractService    service.ExtractService
	promptService     service.PromptService
	completionService *service.CompletionService
}

func NewPanelController(g *gin.RouterGroup, completionService *service.CompletionService) *PanelController {
	a := &PanelController{completionService: completionService}
	a.initRouter(g)
	return a
}

func (a *PanelController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/panel")
	g.Use(a.checkLogin)

	g.GET("/", a.index)
	g.GET("/generation", a.generation)
	g.GET("/proofreading", a.proofreading)
	g.GET("/history", a.history)

	g.GET("/history/export", a.exportHistory)
	g.GET("/history/:id/download", a.downloadEntry)

	api := g.Group("/api")
	api.POST("/generate", a.generate)
	api.POST("/extract", a.extract)
	api.POST("/proofread", a.proofread)
	api.GET("/history", a.listHistory)
	api.GET("/logs", a.logs)
}

// index renders the page for the session's current view selection.
func (a *PanelController) index(c *gin.Context) {
	switch session.GetView(c) {
	case session.ViewProofreading:
		a.proofreadingPage(c)
	case session.ViewHistory:
		a.historyPage(c)
	default:
		a.generationPage(c)
	}
}

func (a *PanelController) generation(c *gin.Context) {
	session.SetView(c, session.ViewGeneration)
	a.generationPage(c)
}

func (a *PanelController) proofreading(c *gin.Context) {
	session.SetView(c, session.ViewProofreading)
	a.proofreadingPage(c)
}

func (a *PanelController) history(c *gin.Context) {
	session.SetView(c, session.ViewHistory)
	a.historyPage(c)
}

func (a *PanelController) generationPage(c *gin.Context) {
	html(c, "generation.html", "テキスト生成", gin.H{
		"contentTypes": service.ContentTypes,
		"lengthLabels": service.LengthLabels,
		"models":       service.Models,
	})
}

func (a *PanelController) proofreadingPage(c *gin.Context) {
	html(c, "proofreading.html", "テキスト校閲", gin.H{
		"checkOptions": service.CheckOptions,
		"models":       service.Models,
	})
}

func (a *PanelController) historyPage(c *gin.Context) {
	html(c, "history.html", "利用履歴", gin.H{
		"actionTypes": []string{model.ActionGeneration, model.ActionProofreading},
	})
}

// generate runs one generation action: prompt assembly, the completion
// call, then exactly one history row. A failed completion writes nothing.
func (a *PanelController) generate(c *gin.Context) {
	user := session.GetLoginUser(c)

	var form GenerateForm
	if err := c.ShouldBind(&form); err != nil {
		pureJsonMsg(c, http.StatusOK, false, "入力内容が正しくありません。")
		return
	}
	if form.Topic == "" {
		pureJsonMsg(c, http.StatusOK, false, "トピックを入力してください。")
		return
	}

	prompt, err := a.promptService.BuildGenerationPrompt(form.Type, form.Topic, form.Length, form.AdditionalInfo)
	if err != nil {
		jsonMsg(c, "エラーが発生しました", err)
		return
	}

	temperature := service.DefaultTemperature
	if form.Temperature != nil {
		temperature = *form.Temperature
	}

	result, err := a.completionService.Complete(c.Request.Context(), prompt, form.Model, temperature)
	if err != nil {
		jsonMsg(c, "エラーが発生しました", err)
		return
	}

	// The generation history stores the assembled prompt as its input.
	if err := a.historyService.Append(user.Id, model.ActionGeneration, prompt, result, ""); err != nil {
		jsonMsg(c, "履歴の保存に失敗しました", err)
		return
	}

	logger.Infof("%s generated text for topic %q", user.Username, form.Topic)
	jsonMsgObj(c, "テキストが生成されました！", gin.H{"result": result}, nil)
}

// extract converts an uploaded file to text for preview. Failures are
// display strings, never error envelopes.
func (a *PanelController) extract(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		pureJsonMsg(c, http.StatusOK, false, "ファイルをアップロードしてください。")
		return
	}

	data, err := readUpload(fileHeader)
	if err != nil {
		jsonMsg(c, "エラーが発生しました", err)
		return
	}

	text := a.extractService.ExtractText(fileHeader.Filename, data)
	jsonObj(c, gin.H{
		"fileName": fileHeader.Filename,
		"text":     text,
	}, nil)
}

// proofread runs one proofreading action over typed text or an uploaded
// file. Extraction failures flow into the prompt as content, matching the
// legacy behavior.
func (a *PanelController) proofread(c *gin.Context) {
	user := session.GetLoginUser(c)

	inputText := c.PostForm("inputText")
	fileName := ""

	if fileHeader, err := c.FormFile("file"); err == nil {
		data, err := readUpload(fileHeader)
		if err != nil {
			jsonMsg(c, "エラーが発生しました", err)
			return
		}
		fileName = fileHeader.Filename
		inputText = a.extractService.ExtractText(fileName, data)
	}

	if inputText == "" {
		pureJsonMsg(c, http.StatusOK, false, "テキストを入力またはファイルをアップロードしてください。")
		return
	}

	checks := c.PostFormArray("checks")
	modelName := c.PostForm("model")
	temperature := service.DefaultTemperature
	if v, err := strconv.ParseFloat(c.PostForm("temperature"), 64); err == nil {
		temperature = v
	}

	prompt, err := a.promptService.BuildProofreadingPrompt(inputText, checks)
	if err != nil {
		jsonMsg(c, "エラーが発生しました", err)
		return
	}

	result, err := a.completionService.Complete(c.Request.Context(), prompt, modelName, temperature)
	if err != nil {
		jsonMsg(c, "エラーが発生しました", err)
		return
	}

	if err := a.historyService.Append(user.Id, model.ActionProofreading, inputText, result, fileName); err != nil {
		jsonMsg(c, "履歴の保存に失敗しました", err)
		return
	}

	logger.Infof("%s proofread %d characters", user.Username, len([]rune(inputText)))
	jsonMsgObj(c, "校閲が完了しました！", gin.H{
		"result":   result,
		"content":  inputText,
		"fileName": fileName,
	}, nil)
}

// logs returns recent buffered log lines for the panel.
func (a *PanelController) logs(c *gin.Context) {
	count, err := strconv.Atoi(c.DefaultQuery("count", "50"))
	if err != nil || count < 0 {
		count = 50
	}
	level := c.DefaultQuery("level", "INFO")
	jsonObj(c, logger.GetLogs(count, level), nil)
}

// listHistory returns the session user's entries, newest first.
func (a *PanelController) listHistory(c *gin.Context) {
	user := session.GetLoginUser(c)

	entries, err := a.historyService.ListForUser(user.Id)
	if err != nil {
		jsonMsg(c, "履歴の取得に失敗しました", err)
		return
	}
	jsonObj(c, entries, nil)
}

// exportHistory downloads the full history as a text transcript or CSV.
func (a *PanelController) exportHistory(c *gin.Context) {
	user := session.GetLoginUser(c)

	entries, err := a.historyService.ListForUser(user.Id)
	if err != nil {
		jsonMsg(c, "履歴の取得に失敗しました", err)
		return
	}

	switch c.DefaultQuery("format", "txt") {
	case "csv":
		c.Header("Content-Disposition", `attachment; filename="history.csv"`)
		c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(a.exportService.CSV(entries)))
	default:
		c.Header("Content-Disposition", `attachment; filename="history.txt"`)
		c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(a.exportService.TranscriptAll(entries)))
	}
}

// downloadEntry downloads one entry as a text transcript, owner-scoped.
func (a *PanelController) downloadEntry(c *gin.Context) {
	user := session.GetLoginUser(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}

	entry, err := a.historyService.GetForUser(user.Id, id)
	if err != nil {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+a.exportService.TranscriptFileName(entry)+`"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(a.exportService.TranscriptOne(entry)))
}

func readUpload(fileHeader *multipart.FileHeader) ([]byte, error) {
	f, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
