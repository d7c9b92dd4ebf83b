package services

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"dust-keeper/internal/config"
	"dust-keeper/internal/logger"
	"dust-keeper/internal/models"
)

// workIdPattern 作品编号形如 RJ123456 / RE141033 / BJ、VJ、RG 前缀同理
// 目录名里编号前后常跟下划线，不能用\b约束边界
var workIdPattern = regexp.MustCompile(`(?i)(RJ|RE|BJ|VJ|RG)(\d{5,8})`)

/**
 * MetadataClient 作品元数据提供商客户端
 * @description
 * - Looks up work info (title, circle, tags, cover) by the provider's work
 *   id, which is usually embedded in the game folder name
 * - BaseURL is overridable so tests can point it at a local server
 */
type MetadataClient struct {
	BaseURL string
	Locale  string
	client  *http.Client
}

var metadataClient *MetadataClient

func GetMetadataClient() *MetadataClient {
	if metadataClient == nil {
		cfg := config.Config.Metadata
		metadataClient = &MetadataClient{
			BaseURL: cfg.BaseUrl,
			Locale:  cfg.Locale,
			client:  &http.Client{Timeout: time.Duration(cfg.TimeoutSec) * time.Second},
		}
	}
	return metadataClient
}

func NewMetadataClient(baseURL, locale string, timeout time.Duration) *MetadataClient {
	return &MetadataClient{
		BaseURL: baseURL,
		Locale:  locale,
		client:  &http.Client{Timeout: timeout},
	}
}

/**
 * ExtractWorkID finds a provider work id inside arbitrary text
 * @param {string} text - Folder name or free text
 * @returns {string} Normalized upper-case work id, empty when none found
 */
func ExtractWorkID(text string) string {
	match := workIdPattern.FindStringSubmatch(text)
	if match == nil {
		return ""
	}
	return strings.ToUpper(match[1]) + match[2]
}

// productEntry 提供商product.json接口的响应条目
type productEntry struct {
	Workno    string `json:"workno"`
	WorkName  string `json:"work_name"`
	MakerName string `json:"maker_name"`
	Intro     string `json:"intro_s"`
	ImageURL  string `json:"image_url"`
	Genres    []struct {
		Name string `json:"name"`
	} `json:"genres"`
}

/**
 * FetchWork looks up metadata for one work id
 * @param {string} workId - Provider work id (e.g. RJ123456)
 * @returns {*models.GameInfo} Work info
 * @returns {error} Lookup, HTTP or decode error; unknown ids are errors too
 */
func (mc *MetadataClient) FetchWork(workId string) (*models.GameInfo, error) {
	workId = ExtractWorkID(workId)
	if workId == "" {
		return nil, fmt.Errorf("not a valid work id")
	}

	url := fmt.Sprintf("%s?workno=%s&locale=%s", mc.BaseURL, workId, mc.Locale)
	resp, err := mc.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("metadata lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("metadata lookup for %s returned status %d", workId, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata response: %w", err)
	}

	// 接口返回条目数组，按workno取第一条匹配
	var entries []productEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("invalid metadata response for %s: %w", workId, err)
	}
	for _, entry := range entries {
		if !strings.EqualFold(entry.Workno, workId) {
			continue
		}
		info := &models.GameInfo{
			DlsiteId:    strings.ToUpper(entry.Workno),
			Title:       entry.WorkName,
			Circle:      entry.MakerName,
			Description: entry.Intro,
			CoverImage:  normalizeImageURL(entry.ImageURL),
		}
		for _, genre := range entry.Genres {
			info.Tags = append(info.Tags, genre.Name)
		}
		logger.Infof("Metadata resolved for %s: %s", workId, info.Title)
		return info, nil
	}
	return nil, fmt.Errorf("work %s not found at metadata provider", workId)
}

// normalizeImageURL 提供商返回协议相对URL（//img...），补全为https
func normalizeImageURL(url string) string {
	if strings.HasPrefix(url, "//") {
		return "https:" + url
	}
	return url
}
