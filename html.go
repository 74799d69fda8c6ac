/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

const homeHTML = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Lunchvote</title>
<link rel="stylesheet" href="{{prefix}}/assets/room.css">
</head>
<body>
<h1>Lunchvote</h1>
<p>Swipe through restaurants with your group and let the votes decide.</p>
<p><a class="button" href="{{prefix}}/room">Create a room</a></p>
</body>
</html>
`

const roomHTML = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Lunchvote room</title>
<link rel="stylesheet" href="{{prefix}}/assets/room.css">
</head>
<body data-prefix="{{prefix}}">
<h1>Room <span id="room"></span></h1>
<div id="status">Connecting…</div>
<img id="qr" alt="Join link">
<section id="deck"><h2 id="candidate"></h2>
  <button id="no">Non</button><button id="yes">Oui</button><button id="optout">Je passe</button>
</section>
<section><h2>Leaderboard</h2><ol id="leaderboard"></ol><p id="winner"></p></section>
<section><h2>Participants</h2><ul id="users"></ul></section>
<section><h2>Chat</h2><ul id="chat"></ul>
  <form id="chatform"><input id="text" autocomplete="off"><button>Send</button></form>
</section>
<script src="{{prefix}}/assets/room.js"></script>
</body>
</html>
`

const roomCSS = `body { font-family: system-ui, -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; margin: 2rem; max-width: 40rem; }
#status { margin-bottom: 1rem; font-size: 0.9rem; }
#qr { float: right; width: 8rem; }
ul, ol { padding-left: 1.2rem; }
li.offline { opacity: 0.5; }
li.vote { font-style: italic; }
button, .button { padding: 0.4rem 0.8rem; margin-right: 0.4rem; }
`

const roomJS = `(function() {
  const prefix = document.body.dataset.prefix || '';
  const roomKey = location.pathname.split('/').pop().toUpperCase();
  const $ = (id) => document.getElementById(id);
  $('room').textContent = roomKey;
  $('qr').src = location.pathname + '/qr';

  const userName = localStorage.getItem('lunchvote-name') || prompt('Your name:') || '';
  if (!userName) { $('status').textContent = 'A name is required.'; return; }
  localStorage.setItem('lunchvote-name', userName);

  let state = { users: [], candidateSet: null, leaderboard: [] };
  const proto = (location.protocol === 'https:') ? 'wss://' : 'ws://';
  const ws = new WebSocket(proto + location.host + prefix + '/ws');
  const send = (msg) => ws.send(JSON.stringify(Object.assign({ roomKey: roomKey, userName: userName }, msg)));

  function me() { return state.users.find((u) => u.name === userName); }

  function render() {
    $('users').innerHTML = '';
    state.users.forEach((u) => {
      const li = document.createElement('li');
      li.textContent = u.name + (u.hasOptedOut ? ' (passe)' : '');
      li.style.color = u.color;
      if (!u.online) li.className = 'offline';
      $('users').appendChild(li);
    });
    $('leaderboard').innerHTML = '';
    state.leaderboard.forEach((e) => {
      const li = document.createElement('li');
      li.textContent = e.name + ': ' + e.votes;
      $('leaderboard').appendChild(li);
    });
    const u = me();
    const deck = state.candidateSet || [];
    if (u && !u.hasOptedOut && u.restaurantIndex < deck.length) {
      $('candidate').textContent = deck[u.restaurantIndex].name;
      $('deck').hidden = false;
    } else {
      $('deck').hidden = true;
    }
  }

  function addChat(m) {
    const li = document.createElement('li');
    li.textContent = '[' + m.time + '] ' + m.user + (m.type === 'vote' ? ' ' : ': ') + m.text;
    if (m.type === 'vote') li.className = 'vote';
    $('chat').appendChild(li);
  }

  ws.onopen = function() {
    $('status').textContent = 'Connected as ' + userName + '.';
    send({ type: 'join' });
  };

  ws.onmessage = function(event) {
    const msg = JSON.parse(event.data);
    switch (msg.type) {
      case 'room-state':
        state.users = msg.users || [];
        state.leaderboard = msg.leaderboard || [];
        state.candidateSet = msg.candidateSet || null;
        $('chat').innerHTML = '';
        (msg.chatHistory || []).forEach(addChat);
        if (msg.winner) $('winner').textContent = 'Winner: ' + msg.winner.name;
        if (!msg.sessionStart) send({ type: 'set-session-start', timestamp: new Date().toISOString() });
        if (!state.candidateSet) {
          fetch(prefix + '/api/restaurants?action=random&count=10&minRating=4')
            .then((r) => r.json())
            .then((list) => send({ type: 'set-candidate-set', candidates: list }));
        }
        break;
      case 'user-list-update': state.users = msg.users; break;
      case 'leaderboard-update': state.leaderboard = msg.leaderboard; break;
      case 'candidate-set-update': state.candidateSet = msg.candidates; break;
      case 'new-chat-message': addChat(msg.message); break;
      case 'event-rejected': $('status').textContent = 'Rejected ' + msg.event + ': ' + msg.reason; break;
    }
    render();
  };

  function vote(choice) {
    const u = me();
    if (!u || !state.candidateSet) return;
    send({ type: 'vote', candidateName: state.candidateSet[u.restaurantIndex].name, choice: choice });
  }

  $('yes').onclick = () => vote('yes');
  $('no').onclick = () => vote('no');
  $('optout').onclick = () => send({ type: 'opt-out' });
  $('chatform').onsubmit = function(e) {
    e.preventDefault();
    const text = $('text').value.trim();
    if (text) send({ type: 'chat-send', text: text });
    $('text').value = '';
  };

  ws.onclose = function() { $('status').textContent = 'Disconnected.'; };
})();
`

func withPrefix(cfg *Config, page string) []byte {
	return []byte(strings.ReplaceAll(page, "{{prefix}}", cfg.prefix))
}

func serveStatic(cfg *Config, contentType string, data []byte, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		securityHeaders(cfg, w)

		_, err := w.Write(data)
		if err != nil {
			errs <- err

			return
		}
	}
}

func serveHealthCheck(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		securityHeaders(cfg, w)

		_, err := w.Write([]byte("Ok\n"))
		if err != nil {
			errs <- err

			return
		}
	}
}

func serveRobots(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		data := `User-agent: *
Disallow: /room/
Disallow: /api/`

		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		securityHeaders(cfg, w)

		_, err := w.Write([]byte(data))
		if err != nil {
			errs <- err

			return
		}
	}
}

// redirectNewRoom handles GET /room by picking an unused key and sending the
// creator to /room/:room. The room itself only exists once someone joins.
func redirectNewRoom(cfg *Config, reg *Registry) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		key := reg.newRoomKey()
		logf(cfg, "ROOMS: Issued room key %s to %s", key, realIP(r))
		http.Redirect(w, r, cfg.prefix+"/room/"+key, http.StatusTemporaryRedirect)
	}
}

// qrHandler renders a PNG QR code of the room's join URL.
func qrHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	key := normalizeRoomKey(ps.ByName("room"))
	if key == "" {
		http.Error(w, "missing room key", http.StatusBadRequest)
		return
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	// We are at /.../room/:room/qr; strip trailing "/qr" to get the room URL.
	path := strings.TrimSuffix(r.URL.Path, "/qr")

	const qrSize = 320
	png, err := qrcode.Encode(scheme+"://"+r.Host+path, qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}
