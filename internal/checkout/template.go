package checkout

import "html/template"

// The embedded payment form. Kept deliberately plain: integrations that want
// their own look mount the handshake behind their own page and post the same
// fields.
var pageTemplate = template.Must(template.New("checkout").Parse(`<!doctype html>
<html>
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>{{.Site.Name}}</title>
  <style>
    body { font-family: -apple-system, system-ui, Segoe UI, Roboto, Arial; padding: 24px; }
    .box { max-width: 480px; margin: 40px auto; }
    label { display: block; margin-top: 12px; }
    input { width: 100%; padding: 8px; margin-top: 4px; }
    button { margin-top: 16px; padding: 12px 16px; border-radius: 10px; background: #111; color: #fff; border: 0; }
    .muted { opacity: 0.7; }
  </style>
</head>
<body>
  <div class="box">
    <h3>{{.Site.Name}}</h3>
    {{if .Site.Description}}<p class="muted">{{.Site.Description}}</p>{{end}}
    <form method="POST">
      <input type="hidden" name="csrf_token" value="{{.CSRFToken}}">
      <label>First name <input type="text" name="first_name" required></label>
      <label>Last name <input type="text" name="last_name" required></label>
      <label>Email <input type="email" name="email" required></label>
      <label>Amount <input type="number" name="amount" min="1" step="0.01" required></label>
      {{if .Site.RequirePhone}}<label>Phone number <input type="tel" name="phone_number" required></label>{{end}}
      <button type="submit">Pay</button>
    </form>
  </div>
</body>
</html>`))
