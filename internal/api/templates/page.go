package templates

import "html/template"

// PageName is the name the page is registered under in the gin engine.
const PageName = "page"

// PageTmpl is the parsed template for the single-page generator.
var PageTmpl = template.Must(
	template.New(PageName).Parse(pageHTML),
)

const pageHTML = `<!DOCTYPE html>
<html lang="pt-BR">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    {{if .Loading}}<meta http-equiv="refresh" content="3">{{end}}
    <title>Gerador de Carrossel para Instagram</title>
    <style>
        *,*::before,*::after { margin: 0; padding: 0; box-sizing: border-box; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
            background: #0f172a;
            color: #e2e8f0;
            min-height: 100vh;
            line-height: 1.5;
        }
        .page { max-width: 1200px; margin: 0 auto; padding: 32px 24px 48px; }
        header { text-align: center; margin-bottom: 32px; }
        header h1 { font-size: 2.2rem; font-weight: 800; background: linear-gradient(90deg, #818cf8, #f472b6); -webkit-background-clip: text; color: transparent; }
        header p { color: #94a3b8; margin-top: 8px; }
        .layout { display: grid; grid-template-columns: 360px 1fr; gap: 32px; }
        @media (max-width: 900px) { .layout { grid-template-columns: 1fr; } }
        .panel { background: #1e293b; border: 1px solid #334155; border-radius: 16px; padding: 24px; }
        label { display: block; font-size: .85rem; font-weight: 600; color: #cbd5e1; margin: 16px 0 6px; }
        input[type=text], textarea, select {
            width: 100%; background: #0f172a; border: 1px solid #475569; border-radius: 8px;
            color: #f1f5f9; padding: 10px 12px; font-size: .95rem;
        }
        textarea { min-height: 96px; resize: vertical; }
        .toggle { display: flex; align-items: center; gap: 8px; margin-top: 16px; font-size: .9rem; }
        .palettes { display: grid; grid-template-columns: repeat(3, 1fr); gap: 8px; }
        .palette { position: relative; cursor: pointer; border-radius: 10px; border: 2px solid transparent; padding: 8px; text-align: center; font-size: .75rem; }
        .palette input { position: absolute; opacity: 0; }
        .palette.selected { border-color: #818cf8; }
        .swatch { display: flex; height: 20px; border-radius: 6px; overflow: hidden; margin-bottom: 4px; }
        .swatch span { flex: 1; }
        .actions { display: flex; gap: 8px; margin-top: 24px; }
        button, .button {
            flex: 1; border: 0; border-radius: 10px; padding: 12px 16px; font-weight: 700; cursor: pointer;
            background: #6366f1; color: #fff; text-align: center; text-decoration: none; font-size: .95rem;
        }
        button.secondary, .button.secondary { background: #334155; }
        button:disabled { opacity: .5; cursor: not-allowed; }
        .placeholder, .loader, .error, .warning, .notice { border-radius: 12px; padding: 20px; }
        .placeholder { border: 2px dashed #334155; color: #64748b; text-align: center; padding: 96px 24px; }
        .loader { text-align: center; padding: 96px 24px; color: #a5b4fc; }
        .spinner { width: 48px; height: 48px; border: 4px solid #334155; border-top-color: #818cf8; border-radius: 50%; margin: 0 auto 16px; animation: spin 1s linear infinite; }
        @keyframes spin { to { transform: rotate(360deg); } }
        .error { background: #450a0a; border: 1px solid #b91c1c; color: #fecaca; }
        .warning { background: #422006; border: 1px solid #ca8a04; color: #fef08a; margin-bottom: 16px; }
        .notice { background: #1e1b4b; border: 1px solid #6366f1; color: #c7d2fe; margin-bottom: 16px; }
        .slides { display: grid; grid-template-columns: repeat(auto-fill, minmax(260px, 1fr)); gap: 16px; }
        .slide img { width: 100%; aspect-ratio: 1; border-radius: 12px; display: block; background: #0f172a; }
        .slide .meta { display: flex; justify-content: space-between; align-items: center; margin-top: 8px; font-size: .8rem; color: #94a3b8; }
        .slide a { color: #a5b4fc; }
        .toolbar { display: flex; justify-content: space-between; align-items: center; margin-bottom: 16px; }
        footer { text-align: center; color: #64748b; font-size: .8rem; margin-top: 48px; }
    </style>
</head>
<body>
<div class="page">
    <header>
        <h1>Gerador de Carrossel para Instagram</h1>
        <p>Transforme um tópico em um carrossel pronto para publicar.</p>
    </header>

    <div class="layout">
        <form class="panel" method="post" action="/generate">
            <label for="topic">Tópico</label>
            <textarea id="topic" name="topic" required placeholder="Ex: 5 dicas para uma manhã produtiva">{{.Form.Topic}}</textarea>

            <label for="username">Seu @ do Instagram</label>
            <input type="text" id="username" name="username" value="{{.Form.Username}}">

            <label for="intention">Intenção</label>
            <select id="intention" name="intention">
                {{range .Intentions}}<option value="{{.}}"{{if eq . $.Form.Intention}} selected{{end}}>{{.}}</option>{{end}}
            </select>

            <label>Paleta de cores</label>
            <div class="palettes">
                {{range .Palettes}}
                <label class="palette{{if eq .Name $.Palette.Name}} selected{{end}}" style="background: {{.Background}}; color: {{.Text}}">
                    <input type="radio" name="palette" value="{{.Name}}"{{if eq .Name $.Palette.Name}} checked{{end}}>
                    <div class="swatch"><span style="background: {{.Primary}}"></span><span style="background: {{.Secondary}}"></span><span style="background: {{.Text}}"></span></div>
                    {{.Name}}
                </label>
                {{end}}
            </div>

            <label class="toggle"><input type="checkbox" name="generate_images" value="on"{{if .Form.GenerateImages}} checked{{end}}> Gerar imagens com IA</label>

            <div class="actions">
                <button type="submit"{{if .Loading}} disabled{{end}}>{{if .Loading}}Gerando...{{else}}Gerar carrossel{{end}}</button>
                {{if .Slides}}<button type="submit" class="secondary" formaction="/appearance" formnovalidate{{if .Loading}} disabled{{end}}>Aplicar aparência</button>{{end}}
            </div>
        </form>

        <section>
            {{if .Notice}}<div class="notice">{{.Notice}}</div>{{end}}

            {{if .Loading}}
            <div class="loader">
                <div class="spinner"></div>
                Gerando seu carrossel... isso pode levar alguns segundos.
            </div>
            {{else if .Error}}
            <div class="error">{{.Error}}</div>
            {{else if .Slides}}
                {{if .Warning}}<div class="warning">{{.Warning}}</div>{{end}}
                <div class="toolbar">
                    <span>{{len .Slides}} slides</span>
                    <a class="button secondary" href="{{.ArchiveURL}}">{{if .Exporting}}Exportando...{{else}}Baixar todos (.zip){{end}}</a>
                </div>
                <div class="slides">
                    {{range .Slides}}
                    <div class="slide">
                        <img src="{{.PreviewURL}}" alt="{{.Title}}" loading="lazy">
                        <div class="meta">
                            <span>{{.Index}}/{{len $.Slides}} · {{.SlideType}}</span>
                            <a href="{{.DownloadURL}}">Baixar PNG</a>
                        </div>
                    </div>
                    {{end}}
                </div>
            {{else}}
            <div class="placeholder">Seu carrossel aparecerá aqui.</div>
            {{end}}
        </section>
    </div>

    <footer>Gerado com Gemini e Imagen · Carrossel para Instagram</footer>
</div>
</body>
</html>`
