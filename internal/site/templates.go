package site

import (
	htmltemplate "html/template"
	texttemplate "text/template"
)

var pageTemplate = htmltemplate.Must(htmltemplate.New("index.html").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.ProjectName}}</title>
  <meta name="description" content="{{.ValueProposition}}">
  <link rel="stylesheet" href="styles.css">
</head>
<body>
  <header class="site-header">
    <nav class="nav container">
      <span class="brand">{{.ProjectName}}</span>
      <a class="btn btn-primary" href="{{.PrimaryHref}}">{{.PrimaryCTA}}</a>
    </nav>
  </header>

  <main>
    <section class="hero container">
      <h1>{{.ValueProposition}}</h1>
      {{- if .MissionStatement}}
      <p class="mission">{{.MissionStatement}}</p>
      {{- end}}
      <div class="hero-actions">
        <a class="btn btn-primary" href="{{.PrimaryHref}}">{{.PrimaryCTA}}</a>
        <a class="btn btn-secondary" href="{{.SecondaryHref}}">{{.SecondaryCTA}}</a>
      </div>
    </section>
{{- if .Features}}

    <section id="features" class="features container">
      <h2>Features</h2>
      <div class="grid">
{{- range .Features}}
        <article class="card">
          <h3>{{.FeatureName}}</h3>
          <p>{{.BenefitCopy}}</p>
        </article>
{{- end}}
      </div>
    </section>
{{- end}}
{{- if .Tiers}}

    <section id="pricing" class="pricing container">
      <h2>Pricing</h2>
      <div class="grid">
{{- range .Tiers}}
        <article class="card tier">
          <h3>{{.TierName}}</h3>
          <p class="price">{{.Price}}</p>
          <ul class="checklist">
{{- range .Features}}
            <li>{{.}}</li>
{{- end}}
          </ul>
        </article>
{{- end}}
      </div>
    </section>
{{- end}}
  </main>

  <footer class="site-footer">
    <p>&copy; {{.Year}} {{.ProjectName}}. All rights reserved.</p>
  </footer>
</body>
</html>
`))

var styleTemplate = texttemplate.Must(texttemplate.New("styles.css").Parse(`:root {
  --primary: {{.Primary}};
  --bg: {{.Background}};
  --text: {{.Text}};
}

* {
  box-sizing: border-box;
  margin: 0;
  padding: 0;
}

body {
  font-family: system-ui, -apple-system, "Segoe UI", Roboto, sans-serif;
  background: var(--bg);
  color: var(--text);
  line-height: 1.6;
}

.container {
  max-width: 1100px;
  margin: 0 auto;
  padding: 0 1.5rem;
}

.site-header {
  border-bottom: 1px solid rgba(0, 0, 0, 0.08);
}

.nav {
  display: flex;
  align-items: center;
  justify-content: space-between;
  height: 4rem;
}

.brand {
  font-weight: 700;
  font-size: 1.25rem;
}

.btn {
  display: inline-block;
  padding: 0.75rem 1.5rem;
  border-radius: 0.5rem;
  font-weight: 600;
  text-decoration: none;
}

.btn-primary {
  background: var(--primary);
  color: #ffffff;
}

.btn-secondary {
  border: 2px solid var(--primary);
  color: var(--primary);
}

.hero {
  padding: 6rem 1.5rem;
  text-align: center;
}

.hero h1 {
  font-size: 3rem;
  line-height: 1.2;
  margin-bottom: 1rem;
}

.mission {
  font-size: 1.25rem;
  opacity: 0.8;
  margin-bottom: 2rem;
}

.hero-actions {
  display: flex;
  gap: 1rem;
  justify-content: center;
}

.features,
.pricing {
  padding: 4rem 1.5rem;
}

h2 {
  font-size: 2rem;
  text-align: center;
  margin-bottom: 2.5rem;
}

.grid {
  display: grid;
  grid-template-columns: repeat(auto-fit, minmax(260px, 1fr));
  gap: 1.5rem;
}

.card {
  border: 1px solid rgba(0, 0, 0, 0.08);
  border-radius: 0.75rem;
  padding: 2rem;
}

.tier .price {
  font-size: 2rem;
  font-weight: 700;
  color: var(--primary);
  margin: 0.5rem 0 1rem;
}

.checklist {
  list-style: none;
}

.checklist li::before {
  content: "\2713  ";
  color: var(--primary);
}

.site-footer {
  padding: 2rem 1.5rem;
  text-align: center;
  opacity: 0.7;
}

@media (max-width: 640px) {
  .hero h1 {
    font-size: 2.25rem;
  }

  .hero-actions {
    flex-direction: column;
  }
}
`))
