package content

import "time"

var kst = time.FixedZone("KST", 9*60*60)

func at(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, kst)
}

// Default returns the site's built-in fixtures.
func Default() *Content {
	return &Content{
		Site: SiteInfo{
			Name:        "포트폴리오",
			Description: "개발자 포트폴리오 - 프로젝트, 경력, Q&A 게시판",
			Author:      "개발자",
			Email:       "hello@example.com",
			URL:         "http://localhost:3000",
			GitHub:      "https://github.com/username",
			LinkedIn:    "https://linkedin.com/in/username",
		},
		Projects: []Project{
			{
				ID:           "1",
				Title:        "포트폴리오 웹사이트",
				Description:  "개인 포트폴리오 사이트입니다. Q&A 게시판, 메일 컨택 기능을 포함하고 있으며, 인증과 데이터 저장을 위한 백엔드를 함께 운영합니다.",
				Image:        "/images/project-portfolio.png",
				Technologies: []string{"Go", "chi", "PostgreSQL", "Redis"},
				LiveURL:      "https://my-portfolio.com",
				GitHubURL:    "https://github.com/username/portfolio",
				Featured:     true,
			},
			{
				ID:           "2",
				Title:        "E-Commerce 플랫폼",
				Description:  "소규모 비즈니스를 위한 이커머스 솔루션입니다. 상품 관리, 장바구니, 결제 시스템을 구현했습니다.",
				Image:        "/images/project-ecommerce.png",
				Technologies: []string{"React", "Node.js", "PostgreSQL", "Stripe"},
				LiveURL:      "https://demo-shop.com",
				GitHubURL:    "https://github.com/username/ecommerce",
				Featured:     true,
			},
			{
				ID:           "3",
				Title:        "태스크 관리 앱",
				Description:  "팀 협업을 위한 칸반 보드 스타일의 태스크 관리 애플리케이션입니다. 실시간 업데이트와 드래그앤드롭을 지원합니다.",
				Image:        "/images/project-taskapp.png",
				Technologies: []string{"React", "Firebase", "Tailwind CSS", "DnD Kit"},
				LiveURL:      "https://task-manager-demo.com",
				GitHubURL:    "https://github.com/username/task-manager",
				Featured:     true,
			},
			{
				ID:           "4",
				Title:        "날씨 대시보드",
				Description:  "실시간 날씨 정보를 제공하는 대시보드입니다. OpenWeather API를 활용하여 전세계 도시의 날씨를 확인할 수 있습니다.",
				Image:        "/images/project-weather.png",
				Technologies: []string{"Vue.js", "Chart.js", "OpenWeather API"},
				LiveURL:      "https://weather-dashboard-demo.com",
			},
			{
				ID:           "5",
				Title:        "블로그 플랫폼",
				Description:  "Markdown을 지원하는 개인 블로그 플랫폼입니다. SEO 최적화와 다크모드를 지원합니다.",
				Image:        "/images/project-blog.png",
				Technologies: []string{"Next.js", "MDX", "Prisma", "Vercel"},
				GitHubURL:    "https://github.com/username/blog",
			},
			{
				ID:           "6",
				Title:        "API 문서화 도구",
				Description:  "REST API를 자동으로 문서화하는 도구입니다. Swagger와 유사한 인터페이스를 제공합니다.",
				Image:        "/images/project-apidocs.png",
				Technologies: []string{"TypeScript", "Express", "React"},
				GitHubURL:    "https://github.com/username/api-docs",
			},
		},
		Experiences: []Experience{
			{
				ID:           "1",
				Company:      "테크 스타트업 A",
				Position:     "시니어 프론트엔드 개발자",
				StartDate:    "2024-01",
				Description:  "핵심 서비스의 프론트엔드 아키텍처 설계 및 개발을 담당했습니다. 대시보드 시스템을 구축하고, 성능 최적화를 통해 페이지 로딩 속도를 40% 개선했습니다.",
				Technologies: []string{"React", "Next.js", "TypeScript", "Tailwind CSS", "GraphQL"},
			},
			{
				ID:           "2",
				Company:      "IT 서비스 기업 B",
				Position:     "프론트엔드 개발자",
				StartDate:    "2022-03",
				EndDate:      "2023-12",
				Description:  "이커머스 플랫폼의 프론트엔드 개발을 담당했습니다. 상품 상세 페이지, 장바구니, 결제 플로우 등 핵심 기능을 개발하고, A/B 테스트를 통해 전환율을 15% 향상시켰습니다.",
				Technologies: []string{"React", "Redux", "Styled Components", "Jest", "Storybook"},
			},
			{
				ID:           "3",
				Company:      "웹 에이전시 C",
				Position:     "웹 개발자",
				StartDate:    "2020-07",
				EndDate:      "2022-02",
				Description:  "다양한 클라이언트를 위한 반응형 웹사이트 및 웹 애플리케이션을 개발했습니다. 10개 이상의 프로젝트를 성공적으로 납품했습니다.",
				Technologies: []string{"Vue.js", "PHP", "WordPress", "MySQL", "SCSS"},
			},
			{
				ID:           "4",
				Company:      "개인 프로젝트 / 프리랜서",
				Position:     "풀스택 개발자",
				StartDate:    "2019-01",
				EndDate:      "2020-06",
				Description:  "다양한 사이드 프로젝트와 프리랜서 작업을 수행했습니다. 스타트업의 MVP 개발, 소규모 비즈니스의 웹사이트 제작 등 다양한 경험을 쌓았습니다.",
				Technologies: []string{"JavaScript", "Node.js", "MongoDB", "React"},
			},
		},
		Education: []Education{
			{ID: "1", School: "한국대학교", Degree: "컴퓨터공학 학사", StartDate: "2015-03", EndDate: "2019-02"},
		},
		Certifications: []Certification{
			{ID: "1", Name: "AWS Certified Developer - Associate", Issuer: "Amazon Web Services", Date: "2023-06"},
			{ID: "2", Name: "정보처리기사", Issuer: "한국산업인력공단", Date: "2019-11"},
		},
		Skills: []SkillGroup{
			{Category: "Frontend", Items: []string{"React", "Next.js", "TypeScript", "Tailwind CSS"}},
			{Category: "Backend", Items: []string{"Go", "Node.js", "PostgreSQL", "Redis"}},
			{Category: "Tools", Items: []string{"Git", "VS Code", "Figma", "Docker"}},
		},
		QnA: []QAPost{
			{
				ID:        "1",
				Title:     "React와 Next.js의 차이점이 궁금합니다",
				Content:   "프론트엔드 개발을 시작하려고 하는데, React로 시작해야 할지 Next.js로 시작해야 할지 고민됩니다. 두 기술의 차이점과 각각 어떤 상황에서 사용하면 좋을지 알려주세요.",
				Author:    "개발초보",
				CreatedAt: at(2026, time.January, 15, 10, 30),
				UpdatedAt: at(2026, time.January, 15, 10, 30),
				Answers: []QAAnswer{
					{
						ID:        "a1",
						PostID:    "1",
						Content:   "React는 UI 라이브러리이고, Next.js는 React 기반의 풀스택 프레임워크입니다. 입문자라면 React 기초를 먼저 익히고 Next.js로 넘어가는 것을 추천드립니다.",
						Author:    "관리자",
						CreatedAt: at(2026, time.January, 15, 14, 20),
					},
				},
			},
			{
				ID:        "2",
				Title:     "포트폴리오 프로젝트 협업 가능한가요?",
				Content:   "안녕하세요! 프로젝트 목록을 보고 연락드립니다. 혹시 사이드 프로젝트나 협업 기회가 있을까요? 저는 백엔드 개발자로 3년차입니다.",
				Author:    "백엔드개발자",
				CreatedAt: at(2026, time.January, 18, 9, 15),
				UpdatedAt: at(2026, time.January, 18, 9, 15),
			},
			{
				ID:        "3",
				Title:     "TypeScript 도입 시 주의할 점이 있나요?",
				Content:   "기존 JavaScript 프로젝트에 TypeScript를 도입하려고 합니다. 마이그레이션 과정에서 주의해야 할 점이나 팁이 있으면 공유해주세요!",
				Author:    "JS개발자",
				CreatedAt: at(2026, time.January, 17, 16, 45),
				UpdatedAt: at(2026, time.January, 17, 16, 45),
				Answers: []QAAnswer{
					{
						ID:        "a2",
						PostID:    "3",
						Content:   "점진적 마이그레이션을 추천드립니다. 처음엔 strict 모드를 끄고 .js와 .ts 파일을 혼용한 다음, 파일 하나씩 변환하면서 타입을 추가하면 됩니다.",
						Author:    "관리자",
						CreatedAt: at(2026, time.January, 17, 18, 30),
					},
					{
						ID:        "a3",
						PostID:    "3",
						Content:   "any 타입을 남발하지 않도록 주의하세요. unknown 타입과 타입 가드를 활용하는 것을 추천합니다.",
						Author:    "TS고수",
						CreatedAt: at(2026, time.January, 18, 10, 0),
					},
				},
			},
			{
				ID:        "4",
				Title:     "이 사이트는 어떤 기술 스택으로 만들어졌나요?",
				Content:   "디자인이 깔끔하고 좋네요! 이 포트폴리오 사이트가 어떤 기술로 만들어졌는지 궁금합니다.",
				Author:    "궁금이",
				CreatedAt: at(2026, time.January, 19, 8, 0),
				UpdatedAt: at(2026, time.January, 19, 8, 0),
				Answers: []QAAnswer{
					{
						ID:        "a4",
						PostID:    "4",
						Content:   "Go와 chi로 만든 서버에서 페이지를 렌더링하고, 인증과 게시판 데이터는 PostgreSQL에 저장합니다. 감사합니다!",
						Author:    "관리자",
						CreatedAt: at(2026, time.January, 19, 9, 30),
					},
				},
			},
		},
	}
}
