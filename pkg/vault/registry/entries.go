package registry

import "github.com/tendant/vault/pkg/vault"

var entries = []vault.Component{
	{
		ID:          "burger-menu-button",
		Title:       "Burger Menu Button",
		Description: "Three bars that fold into a cross when the menu opens.",
		Category:    "Buttons",
		Tags:        []string{"menu", "navigation", "toggle"},
		Author:      "The Vault",
		Date:        "2024-05-12",
		Featured:    true,
		Content: vault.Code{
			HTML: `<button class="burger" aria-label="Open menu" aria-expanded="false">
  <span></span><span></span><span></span>
</button>`,
			CSS: `.burger { display: grid; gap: 6px; width: 40px; padding: 8px; background: none; border: 0; cursor: pointer; }
.burger span { display: block; height: 2px; background: currentColor; transition: transform .3s ease, opacity .2s ease; }
.burger.is-open span:nth-child(1) { transform: translateY(8px) rotate(45deg); }
.burger.is-open span:nth-child(2) { opacity: 0; }
.burger.is-open span:nth-child(3) { transform: translateY(-8px) rotate(-45deg); }`,
			JS: `document.querySelectorAll('.burger').forEach((btn) => {
  btn.addEventListener('click', () => {
    const open = btn.classList.toggle('is-open');
    btn.setAttribute('aria-expanded', String(open));
  });
});`,
		},
		Implementation: "<p>Toggle the <code>is-open</code> class from your menu controller.</p>",
	},
	{
		ID:           "magnetic-button",
		Title:        "Magnetic Button",
		Description:  "A call-to-action that leans toward the pointer.",
		Category:     "Buttons",
		Tags:         []string{"hover", "animation", "cta"},
		Author:       "The Vault",
		Date:         "2024-03-02",
		PreviewVideo: "/uploads/videos/magnetic-button/preview.mp4",
		Content: vault.Code{
			HTML: `<a class="magnetic" href="#">Get started</a>`,
			CSS:  `.magnetic { display: inline-block; padding: 1rem 2rem; border-radius: 999px; background: #111; color: #fff; will-change: transform; }`,
			JS: `const el = document.querySelector('.magnetic');
el.addEventListener('mousemove', (e) => {
  const r = el.getBoundingClientRect();
  const x = e.clientX - r.left - r.width / 2;
  const y = e.clientY - r.top - r.height / 2;
  gsap.to(el, { x: x * 0.3, y: y * 0.3, duration: 0.4 });
});
el.addEventListener('mouseleave', () => gsap.to(el, { x: 0, y: 0, duration: 0.6, ease: 'elastic.out(1, 0.4)' }));`,
			ExternalScripts: "https://cdn.jsdelivr.net/npm/gsap@3/dist/gsap.min.js",
		},
		Dependencies: []string{"gsap"},
	},
	{
		ID:           "split-text-reveal",
		Title:        "Split Text Reveal",
		Description:  "Headline letters rise into place one after another.",
		Category:     "Text Effects",
		Tags:         []string{"typography", "animation", "scroll"},
		Author:       "The Vault",
		Date:         "2024-06-20",
		Featured:     true,
		PreviewImage: "/uploads/images/split-text-reveal/preview.webp",
		Content: vault.Code{
			HTML: `<h1 class="reveal">Build once, reuse everywhere</h1>`,
			CSS: `.reveal .char { display: inline-block; transform: translateY(100%); opacity: 0; }
.reveal.is-visible .char { transform: none; opacity: 1; transition: transform .6s cubic-bezier(.2,.7,.2,1), opacity .6s; transition-delay: calc(var(--i) * 20ms); }`,
			JS: `document.querySelectorAll('.reveal').forEach((h) => {
  h.innerHTML = [...h.textContent].map((ch, i) => '<span class="char" style="--i:' + i + '">' + (ch === ' ' ? '&nbsp;' : ch) + '</span>').join('');
  new IntersectionObserver(([entry], obs) => {
    if (entry.isIntersecting) { h.classList.add('is-visible'); obs.disconnect(); }
  }).observe(h);
});`,
		},
	},
	{
		ID:          "glass-card",
		Title:       "Glass Card",
		Description: "Frosted card with a soft border and backdrop blur.",
		Category:    "Cards",
		Tags:        []string{"glassmorphism", "card"},
		Author:      "The Vault",
		Date:        "2023-11-08",
		Content: vault.Code{
			HTML: `<article class="glass"><h3>Glass</h3><p>Content sits on a blurred backdrop.</p></article>`,
			CSS:  `.glass { padding: 1.5rem; border-radius: 16px; background: rgba(255,255,255,.12); border: 1px solid rgba(255,255,255,.25); backdrop-filter: blur(12px); }`,
		},
		MoreInformation: "<p>backdrop-filter needs a translucent background to be visible.</p>",
	},
	{
		ID:          "smooth-scroll",
		Title:       "Smooth Scroll",
		Description: "Inertia scrolling for the whole page.",
		Category:    "Scroll",
		Tags:        []string{"scroll", "lenis"},
		Author:      "The Vault",
		Date:        "2023-09-14",
		Content: vault.Code{
			JS: `const lenis = new Lenis({ lerp: 0.1 });
function raf(time) { lenis.raf(time); requestAnimationFrame(raf); }
requestAnimationFrame(raf);`,
			ExternalScripts: "https://unpkg.com/lenis@1/dist/lenis.min.js",
		},
		ExternalSourceURL: "https://github.com/darkroomengineering/lenis",
		Dependencies:      []string{"lenis"},
	},
	{
		ID:          "marquee-strip",
		Title:       "Marquee Strip",
		Description: "An endless horizontal ticker built with CSS only.",
		Category:    "Text Effects",
		Tags:        []string{"typography", "loop"},
		Author:      "The Vault",
		Date:        "2024-01-27",
		Content: vault.Code{
			HTML: `<div class="marquee"><div class="marquee__track"><span>Design</span><span>Code</span><span>Ship</span><span>Design</span><span>Code</span><span>Ship</span></div></div>`,
			CSS: `.marquee { overflow: hidden; white-space: nowrap; }
.marquee__track { display: inline-flex; gap: 3rem; animation: marquee 12s linear infinite; }
@keyframes marquee { to { transform: translateX(-50%); } }`,
		},
	},
}
