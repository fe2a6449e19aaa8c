package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	texttospeechpb "cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/vnkhanh/e-storybook-backend/models"
	"github.com/vnkhanh/e-storybook-backend/utils"
)

const ttsMaxChunkBytes = 4500 // Dưới ngưỡng 5000 bytes của Google TTS

type ttsVoice struct {
	languageCode string
	name         string
}

var ttsVoices = map[models.Language]ttsVoice{
	models.LangZH: {languageCode: "cmn-CN", name: "cmn-CN-Wavenet-A"},
	models.LangEN: {languageCode: "en-US", name: "en-US-Neural2-F"},
}

// GoogleTTSNarrator đọc text bằng Google TTS và upload MP3 lên storage
type GoogleTTSNarrator struct {
	client     *texttospeech.Client
	synthesize func(ctx context.Context, req *texttospeechpb.SynthesizeSpeechRequest) ([]byte, error)
	store      utils.ObjectStore
	rate       float64
	log        *zap.Logger
}

func NewGoogleTTSNarrator(ctx context.Context, credentialsFile string, store utils.ObjectStore, log *zap.Logger) (*GoogleTTSNarrator, error) {
	client, err := texttospeech.NewClient(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("create tts client: %w", err)
	}
	n := &GoogleTTSNarrator{client: client, store: store, rate: 0.9, log: log}
	n.synthesize = func(ctx context.Context, req *texttospeechpb.SynthesizeSpeechRequest) ([]byte, error) {
		resp, err := client.SynthesizeSpeech(ctx, req)
		if err != nil {
			return nil, err
		}
		return resp.AudioContent, nil
	}
	return n, nil
}

func (n *GoogleTTSNarrator) Close() error {
	if n.client == nil {
		return nil
	}
	return n.client.Close()
}

func (n *GoogleTTSNarrator) Narrate(ctx context.Context, text string, lang models.Language) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("text is empty")
	}
	voice, ok := ttsVoices[lang]
	if !ok {
		voice = ttsVoices[models.LangZH]
	}

	var audio []byte
	chunks := splitTextToChunksByByte(text, ttsMaxChunkBytes)
	for idx, chunk := range chunks {
		n.log.Debug("synthesizing chunk",
			zap.Int("chunk", idx+1), zap.Int("of", len(chunks)), zap.Int("bytes", len(chunk)))
		data, err := n.synthesize(ctx, &texttospeechpb.SynthesizeSpeechRequest{
			Input: &texttospeechpb.SynthesisInput{
				InputSource: &texttospeechpb.SynthesisInput_Text{Text: chunk},
			},
			Voice: &texttospeechpb.VoiceSelectionParams{
				LanguageCode: voice.languageCode,
				Name:         voice.name,
			},
			AudioConfig: &texttospeechpb.AudioConfig{
				AudioEncoding: texttospeechpb.AudioEncoding_MP3,
				SpeakingRate:  n.rate,
			},
		})
		if err != nil {
			return "", fmt.Errorf("synthesize chunk %d: %w", idx+1, err)
		}
		audio = append(audio, data...)
	}

	if d, err := MP3Duration(bytes.NewReader(audio)); err == nil {
		n.log.Debug("narration synthesized", zap.Float64("seconds", d), zap.Int("bytes", len(audio)))
	}

	objectPath := fmt.Sprintf("audio/%s/%s.mp3", time.Now().UTC().Format("2006/01/02"), uuid.NewString())
	return n.store.Upload(ctx, objectPath, audio, "audio/mpeg")
}

// splitTextToChunksByByte chia text theo giới hạn byte, ưu tiên cắt sau dấu câu (cả dấu câu tiếng Trung)
func splitTextToChunksByByte(text string, maxBytes int) []string {
	var chunks []string
	remaining := text

	for len(remaining) > 0 {
		if len(remaining) <= maxBytes {
			chunks = append(chunks, remaining)
			break
		}

		window := remaining[:maxBytes]
		cutPos := 0
		if i := strings.LastIndexAny(window, ".!?\n。！？"); i >= 0 {
			_, size := utf8.DecodeRuneInString(window[i:])
			cutPos = i + size
		}
		if cutPos == 0 || cutPos > maxBytes {
			// Không có dấu câu: lùi về đầu rune để không cắt giữa ký tự UTF-8
			cutPos = maxBytes
			for cutPos > 0 && !utf8.RuneStart(remaining[cutPos]) {
				cutPos--
			}
		}

		chunks = append(chunks, remaining[:cutPos])
		remaining = remaining[cutPos:]
	}

	return chunks
}
