package main

import (
	"bytes"
	"cronyo/cmd"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

// commandGroups はドキュメントファイルごとのコマンド分類
var commandGroups = []struct {
	File     string
	Title    string
	Commands []string
}{
	{File: "rules", Title: "Rule Commands", Commands: []string{"add", "update", "delete", "enable", "disable", "export", "ls", "trigger"}},
	{File: "deploy", Title: "Deploy Commands", Commands: []string{"deploy", "preflight", "rollback"}},
	{File: "misc", Title: "Other Commands", Commands: []string{"configure", "version"}},
}

var groupOf = map[string]string{}

func main() {
	docsDir := "./docs"

	// 既存のdocsディレクトリをクリーン
	if err := os.RemoveAll(docsDir); err != nil {
		log.Fatalf("Failed to clean docs directory: %v", err)
	}
	if err := os.MkdirAll(docsDir, 0755); err != nil {
		log.Fatalf("Failed to create docs directory: %v", err)
	}

	for _, g := range commandGroups {
		for _, name := range g.Commands {
			groupOf[name] = g.File
		}
	}

	// ルートコマンドはdocs/README.mdとして生成
	if err := genSingleMarkdown(cmd.RootCmd, filepath.Join(docsDir, "README.md")); err != nil {
		log.Fatalf("Failed to generate root documentation: %v", err)
	}

	fileCount := 1
	for _, g := range commandGroups {
		var commands []*cobra.Command
		for _, name := range g.Commands {
			c, _, err := cmd.RootCmd.Find([]string{name})
			if err != nil || c == cmd.RootCmd || !c.IsAvailableCommand() {
				log.Printf("Command %s not found, skipping", name)
				continue
			}
			commands = append(commands, c)
		}
		filename := filepath.Join(docsDir, g.File+".md")
		if err := genGroupMarkdown(g.Title, commands, filename); err != nil {
			log.Printf("Failed to generate documentation for %s: %v", g.File, err)
			continue
		}
		fileCount++
	}

	fmt.Printf("✅ Documentation generated in %s (%d files)\n", docsDir, fileCount)
}

// customLinkHandler はドキュメント内のリンクをカスタマイズ
func customLinkHandler(name string) string {
	base := strings.TrimSuffix(name, ".md")
	if base == cmd.AppName {
		return "README.md"
	}

	// cronyo_add -> rules.md#cronyo-add
	parts := strings.SplitN(base, "_", 2)
	if len(parts) == 2 && parts[0] == cmd.AppName {
		if file, ok := groupOf[parts[1]]; ok {
			return file + ".md#" + strings.ReplaceAll(base, "_", "-")
		}
	}
	return name
}

// genSingleMarkdown は単一のコマンドのドキュメントを生成
func genSingleMarkdown(c *cobra.Command, filename string) error {
	buf := new(bytes.Buffer)
	if err := doc.GenMarkdownCustom(c, buf, customLinkHandler); err != nil {
		return err
	}
	return os.WriteFile(filename, []byte(fixMarkdownLinks(buf.String())), 0644)
}

// genGroupMarkdown は分類内の全コマンドを1つのファイルにまとめて生成
func genGroupMarkdown(title string, commands []*cobra.Command, filename string) error {
	var content strings.Builder

	content.WriteString(fmt.Sprintf("# %s\n\n", title))
	content.WriteString("## Table of Contents\n\n")
	for _, c := range commands {
		cmdPath := c.CommandPath()
		anchor := strings.ReplaceAll(cmdPath, " ", "-")
		content.WriteString(fmt.Sprintf("- [%s](#%s)\n", cmdPath, anchor))
	}
	content.WriteString("\n---\n\n")

	for _, c := range commands {
		buf := new(bytes.Buffer)
		if err := doc.GenMarkdownCustom(c, buf, customLinkHandler); err != nil {
			return fmt.Errorf("failed to generate markdown for %s: %w", c.CommandPath(), err)
		}

		cmdDoc := buf.String()
		// versionは共通フラグを使わない
		if c.Name() == "version" {
			cmdDoc = removeInheritedFlagsSection(cmdDoc)
		}
		content.WriteString(fixMarkdownLinks(cmdDoc))
		content.WriteString("\n---\n\n")
	}

	return os.WriteFile(filename, []byte(content.String()), 0644)
}

// removeInheritedFlagsSection は継承フラグセクションを削除
func removeInheritedFlagsSection(content string) string {
	lines := strings.Split(content, "\n")
	result := []string{}
	inInheritedSection := false

	for _, line := range lines {
		if strings.HasPrefix(line, "### Options inherited from parent commands") {
			inInheritedSection = true
			continue
		}

		// 次のセクションに到達したら除外モードを解除
		if inInheritedSection && (strings.HasPrefix(line, "### ") || strings.HasPrefix(line, "## ")) {
			inInheritedSection = false
		}

		if !inInheritedSection {
			result = append(result, line)
		}
	}

	return strings.Join(result, "\n")
}

var anchorLink = regexp.MustCompile(`\((\w+)\.md#([\w-]+)\.md\)`)

// fixMarkdownLinks はGenMarkdownCustomが付ける余分な .md を取り除く
func fixMarkdownLinks(content string) string {
	// rules.md#cronyo-add.md -> rules.md#cronyo-add
	return anchorLink.ReplaceAllString(content, "($1.md#$2)")
}
