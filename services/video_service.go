package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"ai_room_design/config"
	"ai_room_design/logger"
	"ai_room_design/models"
	"ai_room_design/utils"
)

// ErrVideoTimeout 视频生成超时
var ErrVideoTimeout = errors.New("视频生成超时")

// GenerateRoomVideo 调用外部脚本生成房间漫游视频
// 房间图片先落到工作目录的临时文件，脚本结束后清理
func GenerateRoomVideo(ctx context.Context, cfg *config.Config, req *models.VideoGenerationRequest) (*models.VideoGenerationResponse, error) {
	workDir := cfg.Video.WorkDir
	if workDir == "" {
		workDir = os.TempDir()
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, fmt.Errorf("创建工作目录失败: %w", err)
	}

	imgData, err := base64.StdEncoding.DecodeString(utils.StripDataURLPrefix(req.RoomImage))
	if err != nil {
		return nil, fmt.Errorf("房间图片解码失败: %w", err)
	}

	tmpFile, err := os.CreateTemp(workDir, "room_*.jpg")
	if err != nil {
		return nil, fmt.Errorf("创建临时文件失败: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	if _, err := tmpFile.Write(imgData); err != nil {
		tmpFile.Close()
		return nil, fmt.Errorf("写入临时文件失败: %w", err)
	}
	tmpFile.Close()

	timeout := time.Duration(cfg.Video.TimeoutSec) * time.Second
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, cfg.Video.ScriptPath, tmpPath)
	cmd.Dir = workDir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Env = append(os.Environ(),
		"ROOM_STYLE="+req.Style,
		"ROOM_PROMPT="+req.Prompt,
	)

	startTime := time.Now()
	logger.Info("视频生成开始", "script", cfg.Video.ScriptPath, "timeout_sec", cfg.Video.TimeoutSec)

	err = cmd.Run()
	duration := time.Since(startTime)

	if runCtx.Err() == context.DeadlineExceeded {
		logger.Error("视频生成超时", "duration_ms", duration.Milliseconds())
		return nil, ErrVideoTimeout
	}
	if err != nil {
		logger.Error("视频生成脚本失败",
			"error", err,
			"stderr", stderr.String(),
			"duration_ms", duration.Milliseconds())
		return nil, fmt.Errorf("视频生成脚本执行失败: %w", err)
	}

	outputPath := filepath.Join(workDir, cfg.Video.OutputFile)
	info, err := os.Stat(outputPath)
	if err != nil || info.Size() == 0 {
		return nil, fmt.Errorf("脚本执行成功但未产出视频文件: %s", outputPath)
	}

	logger.Info("视频生成完成",
		"path", outputPath,
		"size_bytes", info.Size(),
		"duration_ms", duration.Milliseconds())

	return &models.VideoGenerationResponse{
		VideoPath: outputPath,
		VideoURL:  "/static/videos/" + cfg.Video.OutputFile,
		Status:    "success",
		Message:   fmt.Sprintf("video generated in %.1fs", duration.Seconds()),
	}, nil
}
